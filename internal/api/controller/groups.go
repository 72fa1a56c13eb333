package controller

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/restoboard/restoboard/internal/domain"
	"github.com/restoboard/restoboard/internal/pkg/constants"
	"github.com/restoboard/restoboard/internal/service/mapping"
)

type createGroupRequest struct {
	Name string `json:"name" validate:"required"`
}

func (c *Controller) CreateGroup(ctx echo.Context) error {
	var req createGroupRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}
	if err := ctx.Validate(&req); err != nil {
		return err
	}

	group, warning, err := c.mappings.CreateGroup(ctx.Request().Context(), userKey(ctx), req.Name)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusCreated, syncedResponse{Data: group, SyncWarning: warning})
}

func (c *Controller) ListGroups(ctx echo.Context) error {
	groups, err := c.mappings.ListGroups(ctx.Request().Context(), userKey(ctx))
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, groups)
}

type assignPlatformRequest struct {
	Channel    string `json:"channel" validate:"required"`
	PlatformID string `json:"platformId" validate:"required"`
	Confirm    bool   `json:"confirm"`
}

// conflictResponse carries the current owner's identity so the caller can
// ask the user to confirm the move.
type conflictResponse struct {
	Message string               `json:"message"`
	Code    int                  `json:"code"`
	Owner   domain.PlatformOwner `json:"owner"`
}

func (c *Controller) AssignPlatformID(ctx echo.Context) error {
	var req assignPlatformRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}
	if err := ctx.Validate(&req); err != nil {
		return err
	}

	channel, err := domain.ParseChannel(req.Channel)
	if err != nil {
		return constants.NewCodedError(err.Error(), http.StatusBadRequest)
	}

	result, warning, err := c.mappings.AssignPlatformID(
		ctx.Request().Context(), userKey(ctx), ctx.Param("id"), channel, req.PlatformID, req.Confirm)
	if err != nil {
		var conflict *mapping.ConflictError
		if errors.As(err, &conflict) {
			return ctx.JSON(http.StatusConflict, conflictResponse{
				Message: conflict.Error(),
				Code:    http.StatusConflict,
				Owner:   conflict.Owner,
			})
		}
		return err
	}

	return ctx.JSON(http.StatusOK, syncedResponse{Data: result, SyncWarning: warning})
}

func (c *Controller) DetectDuplicates(ctx echo.Context) error {
	buckets, err := c.mappings.DetectDuplicates(ctx.Request().Context(), userKey(ctx))
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, buckets)
}

type mergeGroupsRequest struct {
	TargetID  string   `json:"targetId" validate:"required"`
	SourceIDs []string `json:"sourceIds" validate:"required,min=1"`
}

func (c *Controller) MergeGroups(ctx echo.Context) error {
	var req mergeGroupsRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}
	if err := ctx.Validate(&req); err != nil {
		return err
	}

	result, warning, err := c.mappings.MergeGroups(ctx.Request().Context(), userKey(ctx), req.TargetID, req.SourceIDs)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, syncedResponse{Data: result, SyncWarning: warning})
}

func (c *Controller) DeleteGroup(ctx echo.Context) error {
	onlyIfEmpty := ctx.QueryParam("ifEmpty") == "true"

	warning, err := c.mappings.DeleteGroup(ctx.Request().Context(), userKey(ctx), ctx.Param("id"), onlyIfEmpty)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, syncedResponse{SyncWarning: warning})
}
