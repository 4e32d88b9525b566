package controllers

import (
	"assetverse-http-service/internal/domain/models"
	"assetverse-http-service/internal/domain/services"
	"assetverse-http-service/internal/domain/services/container"
	"assetverse-http-service/internal/error/response"

	"github.com/gin-gonic/gin"
)

// EmployeeController 处理员工关联与团队查询
type EmployeeController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewEmployeeController 创建员工控制器
func NewEmployeeController(ctx *gin.Context, container *container.ServiceContainer) *EmployeeController {
	return &EmployeeController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleEmployeeFunc 返回一个处理员工请求的Gin处理函数
func HandleEmployeeFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewEmployeeController(ctx, container)

		switch method {
		case "list":
			controller.List()
		case "remove":
			controller.Remove()
		case "team":
			controller.Team()
		default:
			unknownMethod(ctx)
		}
	}
}

func (c *EmployeeController) service() services.InterfaceAffiliationService {
	return c.Container.GetService("affiliation").(services.InterfaceAffiliationService)
}

// List HR的员工列表
// @Summary      Employee list
// @Description  Affiliated employees with the number of assets they currently hold
// @Tags         Employee
// @Produce      json
// @Param        page      query int false "Zero-based page"
// @Param        page_size query int false "Page size"
// @Security     BearerAuth
// @Success      200  {object}  SuccessResponse{data=models.PageResult[services.EmployeeSummary]}
// @Failure      403  {object}  ErrorResponse
// @Router       /hr/employees [get]
func (c *EmployeeController) List() {
	var query models.PaginationQuery
	if !bindQuery(c.Ctx, &query) {
		return
	}
	page, err := c.service().ListEmployees(c.Ctx.Request.Context(), session(c.Ctx), query)
	if err != nil {
		response.FailWithError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, page)
}

// Remove 解除员工关联，收回其资产
// @Summary      Remove employee
// @Description  Closes open assignments, restocks returnable assets and frees a package slot
// @Tags         Employee
// @Produce      json
// @Param        id path int true "Affiliation ID"
// @Security     BearerAuth
// @Success      200  {object}  SuccessResponse{data=services.RemovalResult}
// @Failure      404  {object}  ErrorResponse
// @Router       /hr/employees/{id} [delete]
func (c *EmployeeController) Remove() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}
	result, err := c.service().RemoveEmployee(c.Ctx.Request.Context(), session(c.Ctx), id)
	if err != nil {
		response.FailWithError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, result)
}

// Team 员工所在的团队
// @Summary      My team
// @Description  One team per company the employee is affiliated with
// @Tags         Employee
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  SuccessResponse{data=[]services.Team}
// @Failure      403  {object}  ErrorResponse
// @Router       /team [get]
func (c *EmployeeController) Team() {
	teams, err := c.service().ListTeam(c.Ctx.Request.Context(), session(c.Ctx))
	if err != nil {
		response.FailWithError(c.Ctx, err)
		return
	}
	response.Success(c.Ctx, teams)
}
