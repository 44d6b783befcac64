package tasks

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-task-client/apimodel"
	apperrors "github.com/jrsteele09/go-task-client/internal/errors"
	"github.com/rs/zerolog/log"
)

// Sender is the authenticated transport the service drives. *apiclient.Client satisfies it.
type Sender interface {
	SendJSON(ctx context.Context, method, path string, body, out any) error
}

// Service runs task operations against the API and records the confirmed
// results in a Store.
type Service struct {
	api   Sender
	store *Store
}

func NewService(api Sender, store *Store) (*Service, error) {
	if api == nil {
		return nil, apperrors.New("[tasks.NewService] api sender is required")
	}
	if store == nil {
		return nil, apperrors.New("[tasks.NewService] task store is required")
	}
	return &Service{api: api, store: store}, nil
}

func (s *Service) Store() *Store {
	return s.store
}

// Fetch loads every task and replaces the store content with them.
func (s *Service) Fetch(ctx context.Context) ([]Task, error) {
	var list ListResponse
	if err := s.api.SendJSON(ctx, http.MethodGet, apimodel.RouteTasks, nil, &list); err != nil {
		log.Err(err).Msg("Failed to fetch tasks")
		return nil, fmt.Errorf("[tasks.Fetch] %w", err)
	}
	s.store.ReplaceAll(list.Data)
	return s.store.All(), nil
}

// Create posts in and inserts the task the server returns.
func (s *Service) Create(ctx context.Context, in TaskInput) (Task, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return Task{}, fmt.Errorf("[tasks.Create] %w", err)
	}

	var created Task
	if err := s.api.SendJSON(ctx, http.MethodPost, apimodel.RouteTasks, in, &created); err != nil {
		log.Err(err).Msg("Failed to create task")
		return Task{}, fmt.Errorf("[tasks.Create] %w", err)
	}
	if created.ID == "" {
		return Task{}, fmt.Errorf("[tasks.Create] %w: created task has no id", apperrors.ErrServerFailure)
	}
	s.store.Insert(created)
	return created, nil
}

// Update replaces task id with in. When the task is not cached locally the
// server result is still returned.
func (s *Service) Update(ctx context.Context, id string, in TaskInput) (Task, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Task{}, fmt.Errorf("[tasks.Update] %w: task id is required", apperrors.ErrInvalidInput)
	}
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return Task{}, fmt.Errorf("[tasks.Update] %w", err)
	}

	var updated Task
	if err := s.api.SendJSON(ctx, http.MethodPut, apimodel.TaskPath(id), in, &updated); err != nil {
		log.Err(err).Str("task_id", id).Msg("Failed to update task")
		return Task{}, fmt.Errorf("[tasks.Update] %w", err)
	}
	s.store.ReplaceOne(updated)
	return updated, nil
}

// SetStatus updates only the status of a task, keeping its other fields.
// The task is looked up in the store and fetched when it is not there.
func (s *Service) SetStatus(ctx context.Context, id string, status Status) (Task, error) {
	current, ok := s.store.Get(id)
	if !ok {
		if _, err := s.Fetch(ctx); err != nil {
			return Task{}, err
		}
		if current, ok = s.store.Get(id); !ok {
			return Task{}, fmt.Errorf("[tasks.SetStatus] task %s: %w", id, apperrors.ErrNotFound)
		}
	}
	in := current.Input()
	in.Status = status
	return s.Update(ctx, id, in)
}

// Delete removes task id on the server, then locally.
func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("[tasks.Delete] %w: task id is required", apperrors.ErrInvalidInput)
	}
	if err := s.api.SendJSON(ctx, http.MethodDelete, apimodel.TaskPath(id), nil, nil); err != nil {
		log.Err(err).Str("task_id", id).Msg("Failed to delete task")
		return fmt.Errorf("[tasks.Delete] %w", err)
	}
	s.store.Remove(id)
	return nil
}
