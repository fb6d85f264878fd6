package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	v1 "github.com/nitinprakash96/ganeti-webmgr/api/v1"
	"github.com/nitinprakash96/ganeti-webmgr/internal/service"
	"go.uber.org/zap"
)

type UserHandler struct {
	*Handler
	userService service.UserService
}

func NewUserHandler(handler *Handler, userService service.UserService) *UserHandler {
	return &UserHandler{
		Handler:     handler,
		userService: userService,
	}
}

// Register godoc
// @Summary Register an account
// @Schemes
// @Description Creates the user together with an empty profile
// @Tags Users
// @Accept json
// @Produce json
// @Param request body v1.RegisterRequest true "params"
// @Success 200 {object} v1.Response
// @Router /api/v1/register [post]
func (h *UserHandler) Register(ctx *gin.Context) {
	req := new(v1.RegisterRequest)
	if err := ctx.ShouldBindJSON(req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	if err := h.userService.Register(ctx, req); err != nil {
		h.logger.WithContext(ctx).Error("userService.Register error", zap.Error(err))
		v1.HandleServiceError(ctx, err, nil)
		return
	}

	v1.HandleSuccess(ctx, nil)
}

// Login godoc
// @Summary Log in
// @Schemes
// @Description The account may be a username or an email address
// @Tags Users
// @Accept json
// @Produce json
// @Param request body v1.LoginRequest true "params"
// @Success 200 {object} v1.LoginResponse
// @Router /api/v1/login [post]
func (h *UserHandler) Login(ctx *gin.Context) {
	var req v1.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	token, err := h.userService.Login(ctx, &req)
	if err != nil {
		v1.HandleServiceError(ctx, err, nil)
		return
	}
	v1.HandleSuccess(ctx, v1.LoginResponseData{
		AccessToken: token,
	})
}

// Logout godoc
// @Summary Log out
// @Schemes
// @Description Revokes the token used for this request
// @Tags Users
// @Produce json
// @Security Bearer
// @Success 200 {object} v1.Response
// @Router /api/v1/logout [post]
func (h *UserHandler) Logout(ctx *gin.Context) {
	claims := GetClaimsFromCtx(ctx)
	if claims == nil || claims.ExpiresAt == nil {
		v1.HandleError(ctx, http.StatusUnauthorized, v1.ErrUnauthorized, nil)
		return
	}
	if err := h.userService.Logout(ctx, claims.UserId, claims.ID, claims.ExpiresAt.Time); err != nil {
		v1.HandleServiceError(ctx, err, nil)
		return
	}
	v1.HandleSuccess(ctx, nil)
}

// GetProfile godoc
// @Summary Get the current user
// @Schemes
// @Description
// @Tags Users
// @Accept json
// @Produce json
// @Security Bearer
// @Success 200 {object} v1.GetProfileResponse
// @Router /api/v1/user [get]
func (h *UserHandler) GetProfile(ctx *gin.Context) {
	userId := GetUserIdFromCtx(ctx)
	if userId == "" {
		v1.HandleError(ctx, http.StatusUnauthorized, v1.ErrUnauthorized, nil)
		return
	}

	user, err := h.userService.GetProfile(ctx, userId)
	if err != nil {
		h.logger.WithContext(ctx).Error("userService.GetProfile error", zap.Error(err))
		v1.HandleServiceError(ctx, err, nil)
		return
	}

	v1.HandleSuccess(ctx, user)
}

// UpdateProfile godoc
// @Summary Update the current user
// @Schemes
// @Description Changes email, display name, language or password. A password change needs the old password.
// @Tags Users
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body v1.UpdateProfileRequest true "params"
// @Success 200 {object} v1.Response
// @Router /api/v1/user [put]
func (h *UserHandler) UpdateProfile(ctx *gin.Context) {
	userId := GetUserIdFromCtx(ctx)
	if userId == "" {
		v1.HandleError(ctx, http.StatusUnauthorized, v1.ErrUnauthorized, nil)
		return
	}

	var req v1.UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	// old and new password come together or not at all
	if (req.OldPassword != "" && req.NewPassword == "") || (req.OldPassword == "" && req.NewPassword != "") {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	if err := h.userService.UpdateProfile(ctx, userId, &req); err != nil {
		h.logger.WithContext(ctx).Error("userService.UpdateProfile error", zap.Error(err))
		v1.HandleServiceError(ctx, err, nil)
		return
	}

	v1.HandleSuccess(ctx, nil)
}

// DeleteUser godoc
// @Summary Delete a user
// @Schemes
// @Description Superusers only. Removes the profile and every grant of the user as well.
// @Tags Users
// @Produce json
// @Security Bearer
// @Param username path string true "username"
// @Success 200 {object} v1.Response
// @Router /api/v1/users/{username} [delete]
func (h *UserHandler) DeleteUser(ctx *gin.Context) {
	if err := h.userService.DeleteUser(ctx, GetUserIdFromCtx(ctx), ctx.Param("username")); err != nil {
		v1.HandleServiceError(ctx, err, nil)
		return
	}
	v1.HandleSuccess(ctx, nil)
}
