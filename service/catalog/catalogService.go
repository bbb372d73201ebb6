package catalogsvc

import (
	"context"
	"errors"

	"github.com/Danny213123/cps714-group5/model"
	repo "github.com/Danny213123/cps714-group5/repository/catalog"
)

type Service interface {
	Create(ctx context.Context, item model.ContentItem) (string, error)
	AddCopies(ctx context.Context, itemID string, n int) (int, error)
	List(ctx context.Context) ([]model.ContentItem, error)
	Detail(ctx context.Context, itemID string) (*model.ContentItem, error)
}

type service struct{ r repo.Repo }

func New(r repo.Repo) Service { return &service{r: r} }

func (s *service) Create(ctx context.Context, item model.ContentItem) (string, error) {
	if item.Title == "" || item.Author == "" || item.TotalCopies < 0 {
		return "", errors.New("invalid payload")
	}
	// the format tag must match the payload carried
	switch item.Format {
	case model.FormatEbook:
		if item.Ebook == nil || item.Audiobook != nil {
			return "", errors.New("ebook payload required")
		}
	case model.FormatAudiobook:
		if item.Audiobook == nil || item.Ebook != nil {
			return "", errors.New("audiobook payload required")
		}
	default:
		return "", errors.New("unknown format")
	}
	return s.r.CreateItem(ctx, item)
}

func (s *service) AddCopies(ctx context.Context, itemID string, n int) (int, error) {
	return s.r.AddCopies(ctx, itemID, n)
}

func (s *service) List(ctx context.Context) ([]model.ContentItem, error) { return s.r.List(ctx) }

func (s *service) Detail(ctx context.Context, itemID string) (*model.ContentItem, error) {
	return s.r.Detail(ctx, itemID)
}
