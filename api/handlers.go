package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"todoboard/domain"
	"todoboard/token"
)

const mutationMaxSize = 64 * 1024 // 64 KiB

// Register wires up all todo API routes on the provided Echo instance.
func Register(e *echo.Echo, store Storage, auth Authenticator, hub *Hub, logger *log.Logger) {
	e.GET("/health", health())
	e.GET("/todos", listTodos(store, logger))
	e.POST("/todos", createTodo(store, auth, hub))
	e.PUT("/todos/:id", updateTodo(store, auth, hub))
	e.DELETE("/todos/:id", deleteTodo(store, auth, hub))
	e.GET("/ws/todos", streamTodos(hub))
}

type errorResponse struct {
	Detail string `json:"detail"`
}

type deleteResponse struct {
	OK bool `json:"ok"`
}

type deletedEvent struct {
	ID int64 `json:"id"`
}

func health() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}
}

func listTodos(store Storage, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		ctx := c.Request().Context()
		metrics, spanCtx := newListRequestMetrics(ctx, logger)
		if spanCtx != nil {
			c.SetRequest(c.Request().WithContext(spanCtx))
			ctx = spanCtx
		}
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		fetchStart := time.Now()
		tasks, fetchErr := store.List(ctx)
		metrics.ObserveFetch(time.Since(fetchStart))
		if fetchErr != nil {
			metrics.SetErrorStage("storage")
			c.Logger().Error(fetchErr)
			err = c.JSON(http.StatusInternalServerError, errorResponse{Detail: fetchErr.Error()})
			return err
		}

		// The overdue flag derives from the current time, so every read
		// recomputes it over what the store returned.
		now := time.Now()
		for i := range tasks {
			tasks[i].Enrich(now)
		}
		metrics.SetTasksReturned(len(tasks))

		encodeStart := time.Now()
		err = c.JSON(http.StatusOK, tasks)
		metrics.ObserveEncode(time.Since(encodeStart))
		if err != nil {
			metrics.SetErrorStage("encode_response")
		}
		return err
	}
}

func createTodo(store Storage, auth Authenticator, hub *Hub) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := authenticate(c, auth); err != nil {
			return c.JSON(http.StatusUnauthorized, errorResponse{Detail: err.Error()})
		}

		var input domain.TaskInput
		if err := decodeBody(c, &input); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Detail: "invalid body"})
		}
		if err := input.Validate(); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Detail: err.Error()})
		}

		created, err := store.Create(c.Request().Context(), input.Task(time.Now()))
		if err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, errorResponse{Detail: err.Error()})
		}
		hub.Broadcast("created", created)
		return c.JSON(http.StatusOK, created)
	}
}

func updateTodo(store Storage, auth Authenticator, hub *Hub) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := authenticate(c, auth); err != nil {
			return c.JSON(http.StatusUnauthorized, errorResponse{Detail: err.Error()})
		}
		id, err := taskID(c)
		if err != nil {
			return c.JSON(http.StatusNotFound, errorResponse{Detail: domain.ErrNotFound.Error()})
		}

		var patch domain.TaskPatch
		if err := decodeBody(c, &patch); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Detail: "invalid body"})
		}
		if err := patch.Validate(); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Detail: err.Error()})
		}

		ctx := c.Request().Context()
		task, err := store.Get(ctx, id)
		if err != nil {
			return storageError(c, err)
		}
		patch.Apply(&task, time.Now())
		if err := store.Update(ctx, task); err != nil {
			return storageError(c, err)
		}
		hub.Broadcast("updated", task)
		return c.JSON(http.StatusOK, task)
	}
}

func deleteTodo(store Storage, auth Authenticator, hub *Hub) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := authenticate(c, auth); err != nil {
			return c.JSON(http.StatusUnauthorized, errorResponse{Detail: err.Error()})
		}
		id, err := taskID(c)
		if err != nil {
			return c.JSON(http.StatusNotFound, errorResponse{Detail: domain.ErrNotFound.Error()})
		}

		if err := store.Delete(c.Request().Context(), id); err != nil {
			return storageError(c, err)
		}
		hub.Broadcast("deleted", deletedEvent{ID: id})
		return c.JSON(http.StatusOK, deleteResponse{OK: true})
	}
}

func authenticate(c echo.Context, auth Authenticator) (*token.Claims, error) {
	claims, err := auth.ClaimsFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
	if err != nil {
		return nil, err
	}
	return RequireAuth(claims)
}

func decodeBody(c echo.Context, v any) error {
	lr := io.LimitReader(c.Request().Body, mutationMaxSize)
	dec := sonic.ConfigStd.NewDecoder(lr)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func taskID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

func storageError(c echo.Context, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return c.JSON(http.StatusNotFound, errorResponse{Detail: err.Error()})
	}
	c.Logger().Error(err)
	return c.JSON(http.StatusInternalServerError, errorResponse{Detail: err.Error()})
}
