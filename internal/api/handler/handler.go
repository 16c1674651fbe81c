package handler

import "github.com/ahmednour/giving/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth         *AuthHandler
	User         *UserHandler
	Donation     *DonationHandler
	Request      *RequestHandler
	Notification *NotificationHandler
	Admin        *AdminHandler
	Export       *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth),
		User:         NewUserHandler(svc.User),
		Donation:     NewDonationHandler(svc.Donation),
		Request:      NewRequestHandler(svc.Request),
		Notification: NewNotificationHandler(svc.Notification),
		Admin:        NewAdminHandler(svc.User, svc.Request, svc.Stats),
		Export:       NewExportHandler(svc.Export),
	}
}
