package handler

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/d60-Lab/gin-blog/internal/auth"
	"github.com/d60-Lab/gin-blog/internal/service"
	"github.com/d60-Lab/gin-blog/pkg/response"
)

// Handler 聚合全部 HTTP 处理函数
type Handler struct {
	postService    service.PostService
	tagService     service.TagService
	commentService service.CommentService
	searchService  service.SearchService
	userService    service.UserService
}

func NewHandler(
	postService service.PostService,
	tagService service.TagService,
	commentService service.CommentService,
	searchService service.SearchService,
	userService service.UserService,
) *Handler {
	return &Handler{
		postService:    postService,
		tagService:     tagService,
		commentService: commentService,
		searchService:  searchService,
		userService:    userService,
	}
}

// RegisterValidators 给 gin 的 validator 注册 notblank，并让错误信息使用 json 字段名
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected binding validator engine")
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

// bindError 把校验错误整理成 "field: tag" 形式
func bindError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, e := range verrs {
		parts = append(parts, e.Field()+": "+e.Tag())
	}
	return strings.Join(parts, "; ")
}

// fail 按业务错误映射状态码
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPostNotFound),
		errors.Is(err, service.ErrTagNotFound),
		errors.Is(err, service.ErrCommentNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrTagNotAssociated):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrTagTooLong),
		errors.Is(err, auth.ErrPasswordTooLong):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrCommentsDisabled):
		response.Forbidden(c, err.Error())
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(c, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, err.Error())
	case errors.Is(err, service.ErrUserExists):
		response.Conflict(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}

func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		return 1
	}
	return page
}
