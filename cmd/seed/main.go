// Seeds roles, demo users, vendors and the default approval matrix.
// cmd/seed/main.go
package main

import (
	"log"
	"time"

	"procurement-management-api/config"
	"procurement-management-api/models"
	"procurement-management-api/utils"

	"github.com/joho/godotenv"
)

var roles = []models.Role{
	{RoleID: models.RoleStaff, RoleName: "staff"},
	{RoleID: models.RoleDeptHead, RoleName: "dept_head"},
	{RoleID: models.RoleFinanceManager, RoleName: "finance_manager"},
	{RoleID: models.RoleDirector, RoleName: "director"},
	{RoleID: models.RoleProcurementOfficer, RoleName: "procurement_officer"},
	{RoleID: models.RoleVendor, RoleName: "vendor"},
	{RoleID: models.RoleAdmin, RoleName: "admin"},
}

type seedUser struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	RoleID    int
	VendorIdx int // 1-based index into seeded vendors, 0 = none
}

var users = []seedUser{
	{"System", "Admin", "admin@example.com", "admin1234", models.RoleAdmin, 0},
	{"Anna", "Reyes", "anna.reyes@example.com", "password123", models.RoleStaff, 0},
	{"Ben", "Okafor", "ben.okafor@example.com", "password123", models.RoleDeptHead, 0},
	{"Carla", "Mendes", "carla.mendes@example.com", "password123", models.RoleFinanceManager, 0},
	{"David", "Lindqvist", "david.lindqvist@example.com", "password123", models.RoleDirector, 0},
	{"Erin", "Tan", "erin.tan@example.com", "password123", models.RoleProcurementOfficer, 0},
	{"Office", "Supplies Co", "sales@office-supplies.example.com", "password123", models.RoleVendor, 1},
	{"Tech", "Hardware Ltd", "quotes@tech-hardware.example.com", "password123", models.RoleVendor, 2},
	{"Facility", "Services Inc", "bids@facility-services.example.com", "password123", models.RoleVendor, 3},
}

var vendors = []models.Vendor{
	{VendorName: "Office Supplies Co", ContactEmail: "sales@office-supplies.example.com", IsActive: true},
	{VendorName: "Tech Hardware Ltd", ContactEmail: "quotes@tech-hardware.example.com", IsActive: true},
	{VendorName: "Facility Services Inc", ContactEmail: "bids@facility-services.example.com", IsActive: true},
}

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Initialize database
	config.InitDB()

	if err := config.DB.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.Vendor{},
		&models.Requisition{},
		&models.RequisitionItem{},
		&models.RequisitionVendor{},
		&models.CommitteeMember{},
		&models.Quotation{},
		&models.QuotationLine{},
		&models.CommitteeScore{},
		&models.ApprovalThreshold{},
		&models.ApprovalStep{},
		&models.RequisitionApproval{},
		&models.PurchaseOrder{},
		&models.PurchaseOrderItem{},
		&models.GoodsReceiptNote{},
		&models.GoodsReceiptLine{},
		&models.Invoice{},
		&models.AuditLog{},
		&models.Notification{},
	); err != nil {
		log.Fatal("Migration failed:", err)
	}

	seedRoles()
	vendorIDs := seedVendors()
	seedUsers(vendorIDs)
	seedApprovalMatrix()

	log.Println("Seeding completed!")
}

func seedRoles() {
	now := time.Now()
	for _, role := range roles {
		role.CreateAt = &now
		role.UpdateAt = &now
		var existing models.Role
		if err := config.DB.Where("role_id = ?", role.RoleID).First(&existing).Error; err == nil {
			continue
		}
		if err := config.DB.Create(&role).Error; err != nil {
			log.Fatalf("Failed to seed role %s: %v", role.RoleName, err)
		}
		log.Printf("Seeded role %s", role.RoleName)
	}
}

func seedVendors() []int {
	ids := make([]int, 0, len(vendors))
	for _, vendor := range vendors {
		var existing models.Vendor
		if err := config.DB.Where("contact_email = ?", vendor.ContactEmail).First(&existing).Error; err == nil {
			ids = append(ids, existing.VendorID)
			continue
		}
		vendor.CreateAt = time.Now()
		vendor.UpdateAt = time.Now()
		if err := config.DB.Create(&vendor).Error; err != nil {
			log.Fatalf("Failed to seed vendor %s: %v", vendor.VendorName, err)
		}
		ids = append(ids, vendor.VendorID)
		log.Printf("Seeded vendor %s", vendor.VendorName)
	}
	return ids
}

func seedUsers(vendorIDs []int) {
	now := time.Now()
	for _, u := range users {
		var existing models.User
		if err := config.DB.Where("email = ?", u.Email).First(&existing).Error; err == nil {
			continue
		}

		hashed, err := utils.HashPassword(u.Password)
		if err != nil {
			log.Fatalf("Failed to hash password for %s: %v", u.Email, err)
		}

		user := models.User{
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Email:     u.Email,
			Password:  hashed,
			RoleID:    u.RoleID,
			CreateAt:  &now,
			UpdateAt:  &now,
		}
		if u.VendorIdx > 0 && u.VendorIdx <= len(vendorIDs) {
			vendorID := vendorIDs[u.VendorIdx-1]
			user.VendorID = &vendorID
		}
		if err := config.DB.Create(&user).Error; err != nil {
			log.Fatalf("Failed to seed user %s: %v", u.Email, err)
		}
		log.Printf("Seeded user %s", u.Email)
	}
}

// seedApprovalMatrix installs three bands covering every possible amount:
// small purchases need the department head, mid-size adds the finance
// manager, and everything above also needs the director.
func seedApprovalMatrix() {
	var count int64
	config.DB.Model(&models.ApprovalThreshold{}).Count(&count)
	if count > 0 {
		log.Println("Approval matrix already configured, skipping")
		return
	}

	mid := 50000.0
	high := 500000.0
	small := "Small purchases"
	medium := "Mid-size purchases"
	major := "Major purchases"

	bands := []models.ApprovalThreshold{
		{
			MinAmount:   0,
			MaxAmount:   &mid,
			Description: &small,
			Steps: []models.ApprovalStep{
				{StepOrder: 1, RoleName: "dept_head"},
			},
		},
		{
			MinAmount:   mid,
			MaxAmount:   &high,
			Description: &medium,
			Steps: []models.ApprovalStep{
				{StepOrder: 1, RoleName: "dept_head"},
				{StepOrder: 2, RoleName: "finance_manager"},
			},
		},
		{
			MinAmount:   high,
			MaxAmount:   nil,
			Description: &major,
			Steps: []models.ApprovalStep{
				{StepOrder: 1, RoleName: "dept_head"},
				{StepOrder: 2, RoleName: "finance_manager"},
				{StepOrder: 3, RoleName: "director"},
			},
		},
	}

	for i := range bands {
		bands[i].CreateAt = time.Now()
		bands[i].UpdateAt = time.Now()
		if err := config.DB.Create(&bands[i]).Error; err != nil {
			log.Fatalf("Failed to seed approval matrix: %v", err)
		}
	}
	log.Println("Seeded default approval matrix (3 bands)")
}
