package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	teacherdomain "github.com/escolaops/escolar/internal/teacher/domain"
	"github.com/escolaops/escolar/pkg/db/pagination"
)

func (s *Server) CreateTeacher(c *gin.Context) {
	var req teacherdomain.CreateTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	teacher, err := s.teacherSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": teacher})
}

type listTeachersQuery struct {
	pagination.Pagination
	Active bool   `form:"active"`
	Search string `form:"search"`
}

func (s *Server) ListTeachers(c *gin.Context) {
	var query listTeachersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.teacherSvc.List(c.Request.Context(), teacherdomain.ListTeacherRequest{
		Pagination: query.Pagination,
		ActiveOnly: query.Active,
		Search:     query.Search,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Teachers, "page_info": resp.PageInfo})
}

func (s *Server) GetTeacherByID(c *gin.Context) {
	teacher, err := s.teacherSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": teacher})
}

func (s *Server) UpdateTeacher(c *gin.Context) {
	var req teacherdomain.UpdateTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = c.Param("id")

	teacher, err := s.teacherSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": teacher})
}
