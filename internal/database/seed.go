package database

import (
	"context"
	"strings"
	"time"

	"github.com/glowbook/salon-backend/internal/domain"
	"github.com/glowbook/salon-backend/internal/observability"

	"gorm.io/gorm"
)

var defaultCatalog = []domain.SalonService{
	{Name: "Classic Haircut", Description: "Wash, cut and style", Category: "hair", DurationMin: 45, Price: 35.00, IsActive: true},
	{Name: "Beard Trim", Description: "Shaping and hot towel finish", Category: "hair", DurationMin: 20, Price: 18.00, IsActive: true},
	{Name: "Color Touch-Up", Description: "Root color refresh", Category: "hair", DurationMin: 90, Price: 85.00, IsActive: true},
	{Name: "Gel Manicure", Description: "Gel polish manicure", Category: "nails", DurationMin: 60, Price: 45.00, IsActive: true},
	{Name: "Deep Cleansing Facial", Description: "Cleanse, exfoliate and mask", Category: "skin", DurationMin: 50, Price: 65.00, IsActive: true},
}

// DefaultCatalogNames lists the seeded service names, for tooling that
// reports what a seed run would ensure.
func DefaultCatalogNames() []string {
	names := make([]string, len(defaultCatalog))
	for i, s := range defaultCatalog {
		names[i] = s.Name
	}
	return names
}

// SeedReport summarizes what a seed run changed so the seed CLI can
// print a meaningful dry-run / apply result.
type SeedReport struct {
	CreatedServices int  `json:"createdServices"`
	PromotedAdmin   bool `json:"promotedAdmin"`
	Noop            bool `json:"noop"`
}

func Seed(db *gorm.DB, bootstrapAdminEmail string) error {
	_, err := SeedSync(db, bootstrapAdminEmail)
	return err
}

// SeedSync inserts the default service catalog entries that are missing
// and promotes the bootstrap admin account if one is configured. It is
// idempotent and safe to run on every startup.
func SeedSync(db *gorm.DB, bootstrapAdminEmail string) (*SeedReport, error) {
	start := time.Now()
	defer func() {
		observability.RecordDatabaseStartupDuration(context.Background(), "seed", time.Since(start))
	}()

	report := &SeedReport{}

	for _, s := range defaultCatalog {
		res := db.Where("name = ?", s.Name).FirstOrCreate(&s)
		if res.Error != nil {
			observability.RecordDatabaseStartupEvent(context.Background(), "seed", "error")
			return nil, res.Error
		}
		if res.RowsAffected > 0 {
			report.CreatedServices++
		}
	}

	email := strings.TrimSpace(strings.ToLower(bootstrapAdminEmail))
	if email != "" {
		var u domain.User
		if err := db.Where("email = ?", email).First(&u).Error; err != nil {
			if err != gorm.ErrRecordNotFound {
				observability.RecordDatabaseStartupEvent(context.Background(), "seed", "error")
				return nil, err
			}
		} else if u.Role != domain.RoleAdmin {
			tx := db.Model(&domain.User{}).Where("id = ?", u.ID).Update("role", domain.RoleAdmin)
			if tx.Error != nil {
				observability.RecordDatabaseStartupEvent(context.Background(), "seed", "error")
				return nil, tx.Error
			}
			report.PromotedAdmin = tx.RowsAffected > 0
		}
	}

	report.Noop = report.CreatedServices == 0 && !report.PromotedAdmin
	observability.RecordDatabaseStartupEvent(context.Background(), "seed", "success")
	return report, nil
}
