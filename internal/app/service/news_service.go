package service

import (
	"context"

	"judgeboard/internal/app/access"
	"judgeboard/internal/app/ident"
	"judgeboard/internal/common"
	"judgeboard/internal/domain/model"
	"judgeboard/internal/domain/repository"

	"github.com/go-playground/validator/v10"
	"github.com/gosimple/slug"
	"github.com/sirupsen/logrus"
)

type NewsService struct {
	newsRepo  repository.NewsRepository
	allocator ident.Allocator
	validate  *validator.Validate
	log       *logrus.Logger
}

func NewNewsService(newsRepo repository.NewsRepository, allocator ident.Allocator, log *logrus.Logger) *NewsService {
	return &NewsService{
		newsRepo:  newsRepo,
		allocator: allocator,
		validate:  validator.New(),
		log:       log,
	}
}

type CreateNewsRequest struct {
	Title string `json:"title" validate:"required,max=128"`
	Body  string `json:"body" validate:"required"`
}

type UpdateNewsRequest struct {
	Title *string `json:"title,omitempty" validate:"omitempty,max=128"`
	Body  *string `json:"body,omitempty"`
}

func (s *NewsService) CreateNews(ctx context.Context, requester access.Requester, req CreateNewsRequest) (*model.News, error) {
	if !requester.Privileged() {
		return nil, common.ErrForbidden
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, common.Errorf("%v: %w", err, common.ErrValidation)
	}

	id, err := s.allocator.NextID(ctx, ident.NamespaceNews)
	if err != nil {
		return nil, err
	}

	news := &model.News{
		ID:        id,
		Title:     req.Title,
		Slug:      slug.Make(req.Title),
		Body:      req.Body,
		CreatorID: requester.ID,
	}
	if err := s.newsRepo.Create(ctx, news); err != nil {
		return nil, common.Errorf("failed to create news: %w", err)
	}
	s.log.WithField("news_id", id).Info("news created")
	return news, nil
}

func (s *NewsService) UpdateNews(ctx context.Context, requester access.Requester, id int64, req UpdateNewsRequest) (*model.News, error) {
	if !requester.Privileged() {
		return nil, common.ErrForbidden
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, common.Errorf("%v: %w", err, common.ErrValidation)
	}

	news, err := s.newsRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		news.Title = *req.Title
		news.Slug = slug.Make(*req.Title)
	}
	if req.Body != nil {
		news.Body = *req.Body
	}
	if err := s.newsRepo.Update(ctx, news); err != nil {
		return nil, common.Errorf("failed to update news: %w", err)
	}
	return news, nil
}

func (s *NewsService) GetNews(ctx context.Context, id int64) (*model.News, error) {
	return s.newsRepo.FindByID(ctx, id)
}

func (s *NewsService) ListNews(ctx context.Context, page, pageSize int) ([]model.News, int, error) {
	limit := pageSize
	offset := (page - 1) * pageSize
	if offset < 0 {
		offset = 0
	}
	return s.newsRepo.List(ctx, limit, offset)
}

func (s *NewsService) DeleteNews(ctx context.Context, requester access.Requester, id int64) error {
	if !requester.Privileged() {
		return common.ErrForbidden
	}
	return s.newsRepo.Delete(ctx, id)
}
