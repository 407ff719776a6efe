package services

import (
	"context"

	"fee-portal/dataservice"
	errs "fee-portal/errors"
	"fee-portal/logger"
	"fee-portal/models"
	"fee-portal/utils"
)

// ProfileService resolves and saves the student profile belonging to the
// authenticated account.
type ProfileService struct {
	svc    dataservice.Service
	roster *RosterService
	log    *logger.Logger
}

// NewProfileService wires profile resolution over the roster service.
func NewProfileService(svc dataservice.Service, roster *RosterService, log *logger.Logger) *ProfileService {
	return &ProfileService{svc: svc, roster: roster, log: log}
}

// ProfileResolution is the outcome of looking the account up in the
// roster. Exists decides create-vs-update on the next save; there is no
// separate "new profile" action.
type ProfileResolution struct {
	Student *models.Student `json:"student,omitempty"`
	Name    string          `json:"name"`
	Email   string          `json:"email"`
	Exists  bool            `json:"exists"`
}

// Resolve finds the student whose UserID matches the account. When no
// match exists the form state is prefilled from the account itself.
func (s *ProfileService) Resolve(ctx context.Context, account models.Account) (*ProfileResolution, error) {
	students, err := s.roster.Students(ctx)
	if err != nil {
		return nil, err
	}

	for i := range students {
		if students[i].UserID != nil && *students[i].UserID == account.ID {
			st := students[i]
			return &ProfileResolution{
				Student: &st,
				Name:    st.Name,
				Email:   st.Email,
				Exists:  true,
			}, nil
		}
	}

	return &ProfileResolution{
		Name:  account.Name,
		Email: account.Email,
	}, nil
}

// Save updates the account's student record when one exists, otherwise
// creates it with fees unpaid. Returns the record and whether it was
// created. The roster cache is invalidated on either mutation.
func (s *ProfileService) Save(ctx context.Context, account models.Account, name, email string) (*models.Student, bool, error) {
	if err := utils.ValidateName(name); err != nil {
		return nil, false, errs.E(errs.Invalid, err.Error())
	}
	if err := utils.ValidateEmail(email); err != nil {
		return nil, false, errs.E(errs.Invalid, err.Error())
	}

	resolution, err := s.Resolve(ctx, account)
	if err != nil {
		return nil, false, err
	}

	if resolution.Exists {
		student, err := s.svc.UpdateStudent(ctx, resolution.Student.ID, models.StudentUpdate{
			Name:  &name,
			Email: &email,
		})
		if err != nil {
			return nil, false, err
		}
		s.roster.Invalidate()
		s.log.Info("Profile updated for account %s", account.ID)
		return student, false, nil
	}

	userID := account.ID
	student, err := s.svc.CreateStudent(ctx, models.NewStudent{
		UserID:   &userID,
		Name:     name,
		Email:    email,
		FeesPaid: false,
	})
	if err != nil {
		return nil, false, err
	}
	s.roster.Invalidate()
	s.log.Info("Profile created for account %s", account.ID)
	return student, true, nil
}
