package routes

import (
	"procurement-management-api/controllers"
	"procurement-management-api/middleware"
	"procurement-management-api/services"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			public.POST("/login", controllers.Login)

			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Procurement Management API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User profile
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			// Requisition lifecycle
			requisitions := protected.Group("/requisitions")
			{
				requisitions.GET("", controllers.GetRequisitions)
				requisitions.GET("/:id", controllers.GetRequisition)

				requisitions.POST("", controllers.CreateRequisition)
				requisitions.PUT("/:id", controllers.UpdateRequisition)
				requisitions.DELETE("/:id", controllers.DeleteRequisition)
				requisitions.POST("/:id/submit", controllers.SubmitRequisition)

				// Approval steps follow the configured chain; the service
				// validates the caller's role against the pending step.
				requisitions.POST("/:id/approve", controllers.ApproveRequisition)
				requisitions.POST("/:id/reject", controllers.RejectRequisition)
				requisitions.PUT("/:id/status", controllers.UpdateRequisitionStatus)

				// RFQ window. Route guards mirror the service capability
				// table so the two can never drift apart.
				rfqRoles := middleware.RequireRole(services.AllowedRoles("send", "rfq")...)
				requisitions.POST("/:id/rfq", rfqRoles, controllers.SendRFQ)
				requisitions.POST("/:id/rfq/cancel", rfqRoles, controllers.CancelRFQ)
				requisitions.PUT("/:id/rfq/deadline", rfqRoles, controllers.ExtendQuotationDeadline)

				// Vendors respond to open RFQs
				requisitions.POST("/:id/quotations", middleware.RequireRole(services.AllowedRoles("submit", "quotation")...), controllers.SubmitQuotation)

				// Committee and scoring
				requisitions.POST("/:id/committee", rfqRoles, controllers.AssignCommittee)
				requisitions.PUT("/:id/committee/deadline", rfqRoles, controllers.ExtendScoringDeadline)
				requisitions.POST("/:id/scores", controllers.SubmitScores)
				requisitions.GET("/:id/scores", controllers.GetScoreSummary)
				requisitions.GET("/:id/award-readiness", controllers.GetAwardReadiness)

				// Award
				requisitions.POST("/:id/award", rfqRoles, controllers.AwardQuotation)
				requisitions.POST("/:id/award/reset", rfqRoles, controllers.ResetAward)
				requisitions.POST("/:id/contract", middleware.RequireRole(services.AllowedRoles("record", "contract")...), controllers.RecordContract)

				// Purchase order issue
				requisitions.POST("/:id/purchase-orders", rfqRoles, controllers.IssuePurchaseOrder)
			}

			// Purchase orders, receipts and matching
			purchaseOrders := protected.Group("/purchase-orders")
			{
				purchaseOrders.GET("", controllers.GetPurchaseOrders)
				purchaseOrders.GET("/:id", controllers.GetPurchaseOrder)
				purchaseOrders.POST("/:id/receipts",
					middleware.RequireRole(services.AllowedRoles("receive", "goods")...),
					controllers.RecordGoodsReceipt)
				purchaseOrders.GET("/:id/match", controllers.GetMatchVerdict)
				purchaseOrders.POST("/:id/match/override",
					middleware.RequireRole(services.AllowedRoles("override", "match")...),
					controllers.OverrideMatch)
				purchaseOrders.POST("/:id/invoices",
					middleware.RequireRole(services.AllowedRoles("record", "invoice")...),
					controllers.RecordInvoice)
			}

			// Invoices and payment
			invoices := protected.Group("/invoices")
			{
				payRoles := middleware.RequireRole(services.AllowedRoles("pay", "invoice")...)
				invoices.GET("/:id", controllers.GetInvoice)
				invoices.POST("/:id/approve",
					middleware.RequireRole(services.AllowedRoles("approve_payment", "invoice")...),
					controllers.ApproveInvoice)
				invoices.POST("/:id/dispute",
					middleware.RequireRole(services.AllowedRoles("dispute", "invoice")...),
					controllers.DisputeInvoice)
				invoices.POST("/:id/pay", payRoles, controllers.PayInvoice)
			}

			// Vendor registry (admin manages, everyone reads)
			vendors := protected.Group("/vendors")
			{
				vendors.GET("", controllers.GetVendors)
				vendors.GET("/:id", controllers.GetVendor)
				manageVendors := middleware.RequireRole(services.AllowedRoles("manage", "vendor")...)
				vendors.POST("", manageVendors, controllers.CreateVendor)
				vendors.PUT("/:id", manageVendors, controllers.UpdateVendor)
				vendors.DELETE("/:id", manageVendors, controllers.DeleteVendor)
			}

			// Approval matrix admin
			matrix := protected.Group("/approval-matrix")
			{
				matrix.GET("", controllers.GetApprovalMatrix)
				matrix.PUT("", middleware.RequireRole(services.AllowedRoles("replace", "approval_matrix")...), controllers.ReplaceApprovalMatrix)
			}

			// Audit trail
			protected.GET("/audit-logs",
				middleware.RequireRole(services.AllowedRoles("read", "audit_log")...),
				controllers.GetAuditLogs)

			// Notifications
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", controllers.GetNotifications)
				notifications.PUT("/:id/read", controllers.MarkNotificationRead)
			}

			// Dashboard
			protected.GET("/dashboard", controllers.GetDashboard)
		}
	}
}
