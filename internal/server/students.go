package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	studentdomain "github.com/escolaops/escolar/internal/student/domain"
	"github.com/escolaops/escolar/pkg/db/pagination"
)

func (s *Server) CreateStudent(c *gin.Context) {
	var req studentdomain.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	student, err := s.studentSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": student})
}

type listStudentsQuery struct {
	pagination.Pagination
	Active bool   `form:"active"`
	Search string `form:"search"`
}

func (s *Server) ListStudents(c *gin.Context) {
	var query listStudentsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.studentSvc.List(c.Request.Context(), studentdomain.ListStudentRequest{
		Pagination: query.Pagination,
		ActiveOnly: query.Active,
		Search:     query.Search,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Students, "page_info": resp.PageInfo})
}

func (s *Server) GetStudentByID(c *gin.Context) {
	student, err := s.studentSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": student})
}

func (s *Server) UpdateStudent(c *gin.Context) {
	var req studentdomain.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = c.Param("id")

	student, err := s.studentSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": student})
}
