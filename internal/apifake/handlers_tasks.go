package apifake

import (
	"errors"
	"net/http"

	"github.com/jrsteele09/go-task-client/apimodel"
	"github.com/jrsteele09/go-task-client/tasks"
	"github.com/labstack/echo/v4"
)

func (s *Server) handleListTasks(c echo.Context) error {
	s.mu.Lock()
	list := append([]tasks.Task{}, s.tasks[userIDFrom(c)]...)
	s.mu.Unlock()
	return c.JSON(http.StatusOK, tasks.ListResponse{Data: list})
}

func (s *Server) handleCreateTask(c echo.Context) error {
	in, err := bindTaskInput(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, apimodel.ErrorResponse{Message: err.Error()})
	}

	s.mu.Lock()
	created := s.createTask(userIDFrom(c), in)
	s.mu.Unlock()
	return c.JSON(http.StatusCreated, created)
}

func (s *Server) handleUpdateTask(c echo.Context) error {
	in, err := bindTaskInput(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, apimodel.ErrorResponse{Message: err.Error()})
	}
	in = in.Normalize()

	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.tasks[userIDFrom(c)]
	for i := range list {
		if list[i].ID == c.Param("id") {
			list[i].Title = in.Title
			list[i].Description = in.Description
			list[i].Status = in.Status
			return c.JSON(http.StatusOK, list[i])
		}
	}
	return c.JSON(http.StatusNotFound, apimodel.ErrorResponse{Message: "Task not found"})
}

func (s *Server) handleDeleteTask(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID := userIDFrom(c)
	list := s.tasks[userID]
	for i := range list {
		if list[i].ID == c.Param("id") {
			s.tasks[userID] = append(list[:i], list[i+1:]...)
			return c.JSON(http.StatusOK, apimodel.ErrorResponse{Message: "Task deleted"})
		}
	}
	return c.JSON(http.StatusNotFound, apimodel.ErrorResponse{Message: "Task not found"})
}

func bindTaskInput(c echo.Context) (tasks.TaskInput, error) {
	var in tasks.TaskInput
	if err := c.Bind(&in); err != nil {
		return in, errors.New("Invalid request body")
	}
	if err := in.Normalize().Validate(); err != nil {
		return in, err
	}
	return in, nil
}
