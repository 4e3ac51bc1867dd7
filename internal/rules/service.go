// Package rules implements the administration operations over the rule set.
// Every operation loads the whole document, changes it in memory and writes it back.
package rules

import (
	"context"
	"errors"
	"log/slog"

	"github.com/heimdall-ai/heimdall/internal/apperr"
	"github.com/heimdall-ai/heimdall/models"
	"github.com/heimdall-ai/heimdall/store"
)

// Service manages categories in a RuleStore.
type Service struct {
	store store.RuleStore
}

// NewService creates a rules service backed by s.
func NewService(s store.RuleStore) *Service {
	return &Service{store: s}
}

// List returns the full document.
func (s *Service) List(ctx context.Context) (models.RuleDatabase, error) {
	db, err := s.store.Load(ctx)
	if err != nil {
		return models.RuleDatabase{}, persistenceError(err)
	}
	return db, nil
}

// Add appends a new category. Duplicate request types are rejected by exact match.
func (s *Service) Add(ctx context.Context, c models.Category) error {
	if err := validateCategory(c); err != nil {
		return err
	}

	err := s.store.Update(ctx, func(db *models.RuleDatabase) error {
		if _, exists := db.Find(c.RequestType); exists {
			return apperr.New(apperr.KindConflict, "Category already exists")
		}
		db.Categories = append(db.Categories, copyCategory(c))
		return nil
	})
	if err != nil {
		return persistenceError(err)
	}

	slog.Info("rule added", "category", c.RequestType, "sub_types", len(c.SubRequestTypes))
	return nil
}

// Update replaces the sub-types of an existing category. The category keeps its name;
// the request_type carried in c is ignored.
func (s *Service) Update(ctx context.Context, name string, c models.Category) error {
	c.RequestType = name
	if err := validateCategory(c); err != nil {
		return err
	}

	err := s.store.Update(ctx, func(db *models.RuleDatabase) error {
		i, ok := db.Find(name)
		if !ok {
			return apperr.New(apperr.KindNotFound, "Category not found")
		}
		db.Categories[i].SubRequestTypes = copyCategory(c).SubRequestTypes
		return nil
	})
	if err != nil {
		return persistenceError(err)
	}

	slog.Info("rule updated", "category", name, "sub_types", len(c.SubRequestTypes))
	return nil
}

// Delete removes a category.
func (s *Service) Delete(ctx context.Context, name string) error {
	err := s.store.Update(ctx, func(db *models.RuleDatabase) error {
		i, ok := db.Find(name)
		if !ok {
			return apperr.New(apperr.KindNotFound, "Category not found")
		}
		db.Categories = append(db.Categories[:i], db.Categories[i+1:]...)
		return nil
	})
	if err != nil {
		return persistenceError(err)
	}

	slog.Info("rule deleted", "category", name)
	return nil
}

// Replace overwrites the whole document. Used by imports.
func (s *Service) Replace(ctx context.Context, db models.RuleDatabase) error {
	if err := s.store.Save(ctx, db); err != nil {
		return persistenceError(err)
	}
	slog.Info("rules replaced", "categories", len(db.Categories))
	return nil
}

func validateCategory(c models.Category) error {
	if err := models.ValidateStruct(c); err != nil {
		return apperr.Wrap(apperr.KindValidation, "invalid rule", err)
	}
	return nil
}

// persistenceError leaves classified errors alone and marks everything else as a storage failure.
func persistenceError(err error) error {
	var classified *apperr.Error
	if errors.As(err, &classified) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return apperr.Wrap(apperr.KindPersistence, "rules store unavailable", err)
}

func copyCategory(c models.Category) models.Category {
	out := models.Category{
		RequestType:     c.RequestType,
		SubRequestTypes: make([]models.SubCategory, len(c.SubRequestTypes)),
	}
	for i, sub := range c.SubRequestTypes {
		out.SubRequestTypes[i] = models.SubCategory{
			Name:     sub.Name,
			Keywords: append([]string(nil), sub.Keywords...),
		}
	}
	return out
}
