package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/gin-blog/internal/api/middleware"
	"github.com/d60-Lab/gin-blog/internal/model"
	"github.com/d60-Lab/gin-blog/internal/service"
	"github.com/d60-Lab/gin-blog/pkg/response"
)

type registerRequest struct {
	Email    string `json:"email" binding:"required,email,max=64"`
	Username string `json:"username" binding:"required,alphanum,max=64"`
	Password string `json:"password" binding:"required,min=1,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

type profileRequest struct {
	Name     string `json:"name" binding:"max=64"`
	Location string `json:"location" binding:"max=64"`
	AboutMe  string `json:"about_me"`
}

type adminProfileRequest struct {
	Email    string `json:"email" binding:"required,email,max=64"`
	Username string `json:"username" binding:"required,alphanum,max=64"`
	Admin    bool   `json:"admin"`
	profileRequest
}

// Register 注册；邮箱与管理员邮箱相同则为管理员
// @Summary 注册
// @Tags 用户
// @Accept json
// @Produce json
// @Param request body registerRequest true "注册信息"
// @Success 201 {object} response.Response{data=model.User}
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindError(err))
		return
	}
	u, err := h.userService.Register(c.Request.Context(), service.RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, u)
}

// Login 登录并获取令牌
// @Summary 登录
// @Tags 用户
// @Accept json
// @Produce json
// @Param request body loginRequest true "登录信息"
// @Success 200 {object} response.Response{data=loginResponse}
// @Failure 401 {object} response.Response
// @Failure 429 {object} response.Response
// @Router /api/v1/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindError(err))
		return
	}
	token, u, err := h.userService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, loginResponse{Token: token, User: u})
}

// GetUser 用户资料
// @Summary 用户资料
// @Tags 用户
// @Produce json
// @Param username path string true "用户名"
// @Success 200 {object} response.Response{data=model.User}
// @Failure 404 {object} response.Response
// @Router /api/v1/users/{username} [get]
func (h *Handler) GetUser(c *gin.Context) {
	u, err := h.userService.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, u)
}

// About 博主资料
// @Summary 关于
// @Tags 用户
// @Produce json
// @Success 200 {object} response.Response{data=model.User}
// @Failure 404 {object} response.Response
// @Router /api/v1/about [get]
func (h *Handler) About(c *gin.Context) {
	u, err := h.userService.About(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, u)
}

// UpdateProfile 修改自己的资料
// @Summary 修改资料
// @Tags 用户
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body profileRequest true "资料"
// @Success 200 {object} response.Response{data=model.User}
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /api/v1/profile [put]
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindError(err))
		return
	}
	u, err := h.userService.UpdateProfile(c.Request.Context(), middleware.CurrentUserID(c), req.input())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, u)
}

// AdminUpdateUser 管理员修改任意用户资料
// @Summary 管理员修改资料
// @Tags 用户
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "用户ID"
// @Param request body adminProfileRequest true "资料"
// @Success 200 {object} response.Response{data=model.User}
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/users/{id} [put]
func (h *Handler) AdminUpdateUser(c *gin.Context) {
	var req adminProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindError(err))
		return
	}
	u, err := h.userService.AdminUpdate(c.Request.Context(), c.Param("id"), service.AdminProfileInput{
		Email:        req.Email,
		Username:     req.Username,
		Admin:        req.Admin,
		ProfileInput: req.input(),
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, u)
}

func (r profileRequest) input() service.ProfileInput {
	return service.ProfileInput{Name: r.Name, Location: r.Location, AboutMe: r.AboutMe}
}
