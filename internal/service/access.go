package service

import (
	"context"

	"github.com/noah-isme/matricula-api/internal/models"
	appErrors "github.com/noah-isme/matricula-api/pkg/errors"
)

type studentByUser interface {
	FindByUserID(ctx context.Context, userID string) (*models.Student, error)
}

// callerStudent resolves the student record behind a student token.
func callerStudent(ctx context.Context, students studentByUser, actor *models.JWTClaims) (*models.Student, error) {
	student, err := students.FindByUserID(ctx, actor.UserID)
	if err != nil {
		if isNoRows(err) {
			return nil, forbidden("caller has no student record")
		}
		return nil, appErrors.Internal(err, "failed to load caller student")
	}
	return student, nil
}

// authorizeStudent lets staff act on any student and students only on themselves.
func authorizeStudent(ctx context.Context, students studentByUser, actor *models.JWTClaims, studentID string) error {
	if !actor.IsStudent() {
		return nil
	}
	student, err := callerStudent(ctx, students, actor)
	if err != nil {
		return err
	}
	if student.ID != studentID {
		return forbidden("students may only act on their own enrollment")
	}
	return nil
}
