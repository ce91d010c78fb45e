package bootstrap

import (
	"context"
	"fmt"
	"time"

	"anoa.com/collegetrack/internal/entity"
	universityRepo "anoa.com/collegetrack/internal/modules/university/repository"
	"anoa.com/collegetrack/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const demoPassword = "password"

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.ParentStudent{},
		&entity.University{},
		&entity.Application{},
		&entity.ApplicationRequirement{},
		&entity.ApplicationStatusLog{},
		&entity.FinancialPlan{},
		&entity.Notification{},
	)
}

// Seed loads demo accounts, universities and applications. Running it twice leaves the
// data unchanged.
func Seed(ctx context.Context, db *gorm.DB) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	student, err := seedUser(ctx, db, &entity.User{
		Email:           "student@example.com",
		PasswordHash:    string(hash),
		Name:            "Alex Chen",
		Role:            entity.RoleStudent,
		GraduationYear:  intPtr(2027),
		GPA:             floatPtr(3.8),
		SATScore:        intPtr(1450),
		ACTScore:        intPtr(32),
		TargetCountries: datatypes.JSONSlice[string]{"United States", "Canada"},
		IntendedMajors:  datatypes.JSONSlice[string]{"Computer Science", "Data Science"},
	})
	if err != nil {
		return err
	}

	parent, err := seedUser(ctx, db, &entity.User{
		Email:        "parent@example.com",
		PasswordHash: string(hash),
		Name:         "Mei Chen",
		Role:         entity.RoleParent,
	})
	if err != nil {
		return err
	}

	if _, err := seedUser(ctx, db, &entity.User{
		Email:        "admin@example.com",
		PasswordHash: string(hash),
		Name:         "Administrator",
		Role:         entity.RoleAdmin,
	}); err != nil {
		return err
	}

	err = db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "parent_id"}, {Name: "student_id"}}, DoNothing: true}).
		Create(&entity.ParentStudent{ParentID: parent.ID, StudentID: student.ID}).Error
	if err != nil {
		return fmt.Errorf("seed parent link: %w", err)
	}

	universities := universityRepo.NewUniversityRepository(db)
	seeded := make(map[string]*entity.University)
	for _, u := range demoUniversities() {
		if err := universities.UpsertBySlug(ctx, u); err != nil {
			return fmt.Errorf("seed university %s: %w", u.Slug, err)
		}
		seeded[u.Slug] = u
	}

	apps := []struct {
		slug     string
		kind     entity.ApplicationType
		deadline string
		status   entity.ApplicationStatus
	}{
		{"mit", entity.ApplicationTypeEarlyAction, "2026-11-01", entity.StatusInProgress},
		{"stanford", entity.ApplicationTypeRegular, "2027-01-05", entity.StatusNotStarted},
	}
	for _, a := range apps {
		deadline, _ := time.Parse(time.DateOnly, a.deadline)
		if err := seedApplication(ctx, db, student.ID, seeded[a.slug].ID, a.kind, deadline, a.status); err != nil {
			return err
		}
	}

	logger.Info().
		Str("student", student.Email).
		Str("parent", parent.Email).
		Int("universities", len(seeded)).
		Msg("demo data seeded")
	return nil
}

func seedUser(ctx context.Context, db *gorm.DB, user *entity.User) (*entity.User, error) {
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
		Create(user).Error
	if err != nil {
		return nil, fmt.Errorf("seed user %s: %w", user.Email, err)
	}

	var stored entity.User
	if err := db.WithContext(ctx).Where("email = ?", user.Email).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func seedApplication(ctx context.Context, db *gorm.DB, studentID, universityID uuid.UUID, kind entity.ApplicationType, deadline time.Time, status entity.ApplicationStatus) error {
	var count int64
	if err := db.WithContext(ctx).Model(&entity.Application{}).
		Where("student_id = ? AND university_id = ?", studentID, universityID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	app := &entity.Application{
		StudentID:       studentID,
		UniversityID:    universityID,
		ApplicationType: kind,
		Deadline:        deadline,
		Status:          status,
	}
	for _, t := range entity.DefaultRequirementTypes {
		app.Requirements = append(app.Requirements, entity.ApplicationRequirement{
			RequirementType: t,
			Status:          entity.RequirementNotStarted,
		})
	}
	return db.WithContext(ctx).Create(app).Error
}

func demoUniversities() []*entity.University {
	return []*entity.University{
		{
			Slug:              "mit",
			Name:              "Massachusetts Institute of Technology",
			Country:           "United States",
			State:             strPtr("Massachusetts"),
			City:              strPtr("Cambridge"),
			USNewsRanking:     intPtr(2),
			AcceptanceRate:    floatPtr(4.0),
			ApplicationSystem: strPtr("Direct"),
			TuitionInState:    money(57000),
			TuitionOutState:   money(57000),
			ApplicationFee:    money(75),
			Deadlines: datatypes.NewJSONType(entity.Deadlines{
				EarlyAction: strPtr("2026-11-01"),
				Regular:     strPtr("2027-01-05"),
			}),
			Requirements: datatypes.NewJSONType(entity.Requirements{
				GPA:              floatPtr(4.0),
				SAT:              &entity.ScoreRange{Min: 1500, Max: 1600},
				ACT:              &entity.ScoreRange{Min: 34, Max: 36},
				TOEFL:            intPtr(100),
				Essays:           []string{"Personal statement", "MIT community essay", "Why MIT"},
				Recommendations:  2,
				Interview:        true,
				Extracurriculars: []string{"STEM competitions", "Research projects", "Leadership"},
			}),
		},
		{
			Slug:              "stanford",
			Name:              "Stanford University",
			Country:           "United States",
			State:             strPtr("California"),
			City:              strPtr("Stanford"),
			USNewsRanking:     intPtr(3),
			AcceptanceRate:    floatPtr(3.9),
			ApplicationSystem: strPtr("Common App"),
			TuitionInState:    money(56000),
			TuitionOutState:   money(56000),
			ApplicationFee:    money(90),
			Deadlines: datatypes.NewJSONType(entity.Deadlines{
				EarlyAction: strPtr("2026-11-01"),
				Regular:     strPtr("2027-01-05"),
			}),
			Requirements: datatypes.NewJSONType(entity.Requirements{
				GPA:              floatPtr(3.9),
				SAT:              &entity.ScoreRange{Min: 1450, Max: 1600},
				ACT:              &entity.ScoreRange{Min: 32, Max: 36},
				TOEFL:            intPtr(100),
				IELTS:            floatPtr(7.0),
				Essays:           []string{"Personal statement", "Stanford short essays", "Activities list"},
				Recommendations:  2,
				Extracurriculars: []string{"Academic achievement", "Community service", "Innovation projects"},
			}),
		},
		{
			Slug:              "berkeley",
			Name:              "University of California, Berkeley",
			Country:           "United States",
			State:             strPtr("California"),
			City:              strPtr("Berkeley"),
			USNewsRanking:     intPtr(15),
			AcceptanceRate:    floatPtr(11.4),
			ApplicationSystem: strPtr("Direct"),
			TuitionInState:    money(15000),
			TuitionOutState:   money(45000),
			ApplicationFee:    money(70),
			Deadlines: datatypes.NewJSONType(entity.Deadlines{
				Regular: strPtr("2026-11-30"),
			}),
			Requirements: datatypes.NewJSONType(entity.Requirements{
				GPA:              floatPtr(3.7),
				SAT:              &entity.ScoreRange{Min: 1300, Max: 1500},
				ACT:              &entity.ScoreRange{Min: 29, Max: 34},
				TOEFL:            intPtr(80),
				IELTS:            floatPtr(6.5),
				Essays:           []string{"Personal statement", "UC personal insight questions"},
				Extracurriculars: []string{"Academic preparation", "Personal achievement", "Community involvement"},
			}),
		},
	}
}

func money(v int64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromInt(v))
}

func strPtr(s string) *string     { return &s }
func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
