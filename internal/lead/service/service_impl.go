package service

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/evoleadai/evolead/internal/lead/domain"
	"github.com/evoleadai/evolead/pkg/db/pagination"
	"go.uber.org/zap"
)

const (
	maxPageSize     = 100
	exportBatchSize = 500
)

var exportHeader = []string{"Business Name", "Email", "Phone", "Website", "Confidence Score", "Created At"}

type service struct {
	repo  domain.Repository
	genID *snowflake.Node
	log   *zap.Logger
}

func NewService(repo domain.Repository, genID *snowflake.Node, log *zap.Logger) domain.Service {
	return &service{repo: repo, genID: genID, log: log.Named("lead.service")}
}

func (s *service) Get(ctx context.Context, id snowflake.ID) (*domain.Lead, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, viewer snowflake.ID, filter domain.ListFilter, page pagination.Params) ([]domain.LeadView, *pagination.PageInfo, error) {
	page = page.Normalize(maxPageSize)
	views, total, err := s.repo.List(ctx, viewer, filter, page)
	if err != nil {
		return nil, nil, err
	}
	info := pagination.BuildPageInfo(page, total)
	return views, &info, nil
}

func (s *service) ListBySearch(ctx context.Context, viewer snowflake.ID, searchID snowflake.ID, sortBy domain.SortField, desc bool, page pagination.Params) ([]domain.LeadView, *pagination.PageInfo, error) {
	page = page.Normalize(maxPageSize)
	views, total, err := s.repo.ListBySearch(ctx, viewer, searchID, sortBy, desc, page)
	if err != nil {
		return nil, nil, err
	}
	info := pagination.BuildPageInfo(page, total)
	return views, &info, nil
}

func (s *service) SetMetadata(ctx context.Context, leadID, userID snowflake.ID, update domain.MetadataUpdate) (*domain.Metadata, error) {
	if _, err := s.repo.GetByID(ctx, leadID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	meta := domain.Metadata{
		ID:        s.genID.Generate(),
		LeadID:    leadID,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	existing, err := s.repo.GetMetadata(ctx, leadID, userID)
	if err != nil && !errors.Is(err, domain.ErrMetadataNotFound) {
		return nil, err
	}
	if existing != nil {
		meta.ID = existing.ID
		meta.IsFavorite = existing.IsFavorite
		meta.Notes = existing.Notes
		meta.CreatedAt = existing.CreatedAt
	}
	if update.IsFavorite != nil {
		meta.IsFavorite = *update.IsFavorite
	}
	if update.Notes != nil {
		meta.Notes = *update.Notes
	}

	if err := s.repo.UpsertMetadata(ctx, meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *service) RemoveMetadata(ctx context.Context, leadID, userID snowflake.ID) error {
	return s.repo.DeleteMetadata(ctx, leadID, userID)
}

func (s *service) ExportCSV(ctx context.Context, w io.Writer, viewer snowflake.ID, searchID snowflake.ID) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeader); err != nil {
		return err
	}

	page := pagination.Params{Page: 1, Limit: exportBatchSize}
	for {
		views, _, err := s.repo.ListBySearch(ctx, viewer, searchID, domain.SortByCreatedAt, false, page)
		if err != nil {
			return err
		}
		for _, view := range views {
			record := []string{
				view.BusinessName,
				view.Email,
				view.Phone,
				view.Website,
				strconv.Itoa(view.ConfidenceScore),
				view.CreatedAt.UTC().Format(time.RFC3339),
			}
			if err := writer.Write(record); err != nil {
				return err
			}
		}
		if len(views) < exportBatchSize {
			break
		}
		page.Page++
	}

	writer.Flush()
	return writer.Error()
}
