package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "phonebook/internal/errors"
	"phonebook/internal/model"
	"phonebook/internal/repository"
)

// ContactService is the plain resource API fronted by the auth gateway.
type ContactService interface {
	List(ctx context.Context) ([]model.Contact, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Contact, error)
	Create(ctx context.Context, name, email, phone string) (*model.Contact, error)
	Update(ctx context.Context, id uuid.UUID, name, email, phone string) (*model.Contact, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type contactService struct {
	contacts repository.ContactRepository
}

// NewContactService creates a new contact service.
func NewContactService(contacts repository.ContactRepository) ContactService {
	return &contactService{contacts: contacts}
}

func (s *contactService) List(ctx context.Context) ([]model.Contact, error) {
	return s.contacts.List(ctx)
}

func (s *contactService) Get(ctx context.Context, id uuid.UUID) (*model.Contact, error) {
	contact, err := s.contacts.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrContactNotFound
		}
		return nil, fmt.Errorf("find contact: %w", err)
	}
	return contact, nil
}

func (s *contactService) Create(ctx context.Context, name, email, phone string) (*model.Contact, error) {
	contact := &model.Contact{
		Name:  name,
		Email: model.NormalizeEmail(email),
		Phone: phone,
	}
	if err := s.contacts.Create(ctx, contact); err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}
	return contact, nil
}

func (s *contactService) Update(ctx context.Context, id uuid.UUID, name, email, phone string) (*model.Contact, error) {
	contact, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	contact.Name = name
	contact.Email = model.NormalizeEmail(email)
	contact.Phone = phone

	if err := s.contacts.Update(ctx, contact); err != nil {
		return nil, fmt.Errorf("update contact: %w", err)
	}
	return contact, nil
}

func (s *contactService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.contacts.Delete(ctx, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperrors.ErrContactNotFound
		}
		return fmt.Errorf("delete contact: %w", err)
	}
	return nil
}
