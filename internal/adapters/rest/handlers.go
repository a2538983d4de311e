package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andrescamacho/mediator-go/internal/application/mediator"
	"github.com/andrescamacho/mediator-go/internal/application/user/commands"
	"github.com/andrescamacho/mediator-go/internal/application/user/queries"
)

type createUserRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

type createUserResponse struct {
	ID string `json:"id"`
}

type listUsersParams struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

type listUsersResponse struct {
	Users  []*queries.UserDTO `json:"users"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}

// POST /users
func (s *Server) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, err)
		return
	}

	ctx, cancel := s.dispatchContext(c)
	defer cancel()

	id, err := mediator.Dispatch(ctx, s.sender, commands.NewCreateUserCommand(req.FirstName, req.LastName, req.Email))
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Location", "/users/"+id.String())
	c.JSON(http.StatusCreated, createUserResponse{ID: id.String()})
}

// GET /users/:id
func (s *Server) getUser(c *gin.Context) {
	ctx, cancel := s.dispatchContext(c)
	defer cancel()

	dto, err := mediator.Dispatch(ctx, s.sender, queries.NewGetUserQuery(c.Param("id")))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto)
}

// GET /users?limit=&offset=
func (s *Server) listUsers(c *gin.Context) {
	var params listUsersParams
	if err := c.ShouldBindQuery(&params); err != nil {
		writeBadRequest(c, err)
		return
	}

	ctx, cancel := s.dispatchContext(c)
	defer cancel()

	query := queries.NewListUsersQuery(params.Limit, params.Offset)
	users, err := mediator.Dispatch(ctx, s.sender, query)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, listUsersResponse{Users: users, Limit: query.Limit, Offset: query.Offset})
}
