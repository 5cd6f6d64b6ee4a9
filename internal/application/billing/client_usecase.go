package billing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fatoora-app/invoicing-api/internal/application/dto"
	"github.com/fatoora-app/invoicing-api/internal/domain"
	"github.com/fatoora-app/invoicing-api/internal/domain/entity"
	"github.com/fatoora-app/invoicing-api/internal/domain/repository"
)

// ClientUseCase manages invoice counterparties.
type ClientUseCase struct {
	clientRepo repository.ClientRepository
}

// NewClientUseCase builds the use case.
func NewClientUseCase(clientRepo repository.ClientRepository) *ClientUseCase {
	return &ClientUseCase{clientRepo: clientRepo}
}

// CreateClient registers a new client.
func (uc *ClientUseCase) CreateClient(ctx context.Context, in dto.ClientRequest) (*dto.ClientResponse, error) {
	if in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	client := &entity.Client{
		ID:            uuid.New().String(),
		Name:          in.Name,
		Phone:         in.Phone,
		Address:       in.Address,
		VATNumber:     in.VATNumber,
		Email:         in.Email,
		CompanyName:   in.CompanyName,
		ContactPerson: in.ContactPerson,
		City:          in.City,
		Country:       in.Country,
		PostalCode:    in.PostalCode,
		Status:        defaultString(in.Status, entity.ClientStatusActive),
		Notes:         in.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.clientRepo.Create(client); err != nil {
		return nil, err
	}
	return toClientResponse(client), nil
}

// UpdateClient applies the request to an existing client.
func (uc *ClientUseCase) UpdateClient(ctx context.Context, id string, in dto.ClientRequest) (*dto.ClientResponse, error) {
	client, err := uc.clientRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	client.Name = in.Name
	client.Phone = in.Phone
	client.Address = in.Address
	client.VATNumber = in.VATNumber
	client.Email = in.Email
	client.CompanyName = in.CompanyName
	client.ContactPerson = in.ContactPerson
	client.City = in.City
	client.Country = in.Country
	client.PostalCode = in.PostalCode
	client.Status = defaultString(in.Status, client.Status)
	client.Notes = in.Notes
	client.UpdatedAt = time.Now()
	if err := uc.clientRepo.Update(client); err != nil {
		return nil, err
	}
	return toClientResponse(client), nil
}

// GetClient returns one client.
func (uc *ClientUseCase) GetClient(ctx context.Context, id string) (*dto.ClientResponse, error) {
	client, err := uc.clientRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, domain.ErrNotFound
	}
	return toClientResponse(client), nil
}

// ListClients returns all clients.
func (uc *ClientUseCase) ListClients(ctx context.Context) ([]*dto.ClientResponse, error) {
	clients, err := uc.clientRepo.List()
	if err != nil {
		return nil, err
	}
	out := make([]*dto.ClientResponse, 0, len(clients))
	for _, c := range clients {
		out = append(out, toClientResponse(c))
	}
	return out, nil
}

// DeleteClient removes a client.
func (uc *ClientUseCase) DeleteClient(ctx context.Context, id string) error {
	client, err := uc.clientRepo.GetByID(id)
	if err != nil {
		return err
	}
	if client == nil {
		return domain.ErrNotFound
	}
	return uc.clientRepo.Delete(id)
}

func toClientResponse(c *entity.Client) *dto.ClientResponse {
	return &dto.ClientResponse{
		ID:            c.ID,
		Name:          c.Name,
		Phone:         c.Phone,
		Address:       c.Address,
		VATNumber:     c.VATNumber,
		Email:         c.Email,
		CompanyName:   c.CompanyName,
		ContactPerson: c.ContactPerson,
		City:          c.City,
		Country:       c.Country,
		PostalCode:    c.PostalCode,
		Status:        c.Status,
		Notes:         c.Notes,
		CreatedAt:     c.CreatedAt.Format(time.RFC3339),
	}
}
