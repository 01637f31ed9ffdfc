package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"booklend/internal/catalog"
	"booklend/internal/model"
	"booklend/internal/repository"
)

// ContentService handles announcements, inquiries and reading goals.
type ContentService struct {
	announcements *repository.AnnouncementRepository
	inquiries     *repository.InquiryRepository
	goals         *repository.GoalRepository

	now func() time.Time
}

// NewContentService constructs a ContentService with its dependencies.
func NewContentService(
	announcements *repository.AnnouncementRepository,
	inquiries *repository.InquiryRepository,
	goals *repository.GoalRepository,
) *ContentService {
	return &ContentService{
		announcements: announcements,
		inquiries:     inquiries,
		goals:         goals,
		now:           time.Now,
	}
}

// AnnouncementPage is one page of announcements.
type AnnouncementPage struct {
	Items      []model.Announcement `json:"items"`
	Total      int                  `json:"total"`
	Page       int                  `json:"page"`
	PerPage    int                  `json:"perPage"`
	TotalPages int                  `json:"totalPages"`
}

// InquiryPage is one page of inquiries.
type InquiryPage struct {
	Items      []model.Inquiry `json:"items"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	PerPage    int             `json:"perPage"`
	TotalPages int             `json:"totalPages"`
}

// Announcements lists announcements, pinned first, paginated.
func (s *ContentService) Announcements(ctx context.Context, page, perPage int) (AnnouncementPage, error) {
	all, err := s.announcements.List(ctx)
	if err != nil {
		return AnnouncementPage{}, err
	}
	perPage = catalog.NormalizeSize(perPage, catalog.PageSizesContent)
	if page < 1 {
		page = 1
	}
	start, end := pageBounds(len(all), page, perPage)
	return AnnouncementPage{
		Items:      all[start:end],
		Total:      len(all),
		Page:       page,
		PerPage:    perPage,
		TotalPages: catalog.TotalPages(len(all), perPage),
	}, nil
}

// Announcement returns a single announcement.
func (s *ContentService) Announcement(ctx context.Context, id string) (*model.Announcement, error) {
	return s.announcements.Get(ctx, id)
}

// CreateAnnouncement posts a new announcement. Staff only.
func (s *ContentService) CreateAnnouncement(ctx context.Context, author *model.User, req model.CreateAnnouncementRequest) (*model.Announcement, error) {
	if !author.Role.Staff() {
		return nil, model.ErrForbidden
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Content = strings.TrimSpace(req.Content)
	if req.Title == "" {
		return nil, fmt.Errorf("%w: title is required", model.ErrValidation)
	}
	if req.Content == "" {
		return nil, fmt.Errorf("%w: content is required", model.ErrValidation)
	}

	a := model.Announcement{
		ID:        uuid.New().String(),
		Title:     req.Title,
		Content:   req.Content,
		Author:    author.Name,
		Pinned:    req.Pinned,
		CreatedAt: s.now(),
	}
	if err := s.announcements.Create(ctx, a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Inquiries lists inquiries, newest first: staff see all, users their own.
func (s *ContentService) Inquiries(ctx context.Context, viewer *model.User, page, perPage int) (InquiryPage, error) {
	scope := viewer.ID
	if viewer.Role.Staff() {
		scope = ""
	}
	all, err := s.inquiries.List(ctx, scope)
	if err != nil {
		return InquiryPage{}, err
	}
	perPage = catalog.NormalizeSize(perPage, catalog.PageSizesContent)
	if page < 1 {
		page = 1
	}
	start, end := pageBounds(len(all), page, perPage)
	return InquiryPage{
		Items:      all[start:end],
		Total:      len(all),
		Page:       page,
		PerPage:    perPage,
		TotalPages: catalog.TotalPages(len(all), perPage),
	}, nil
}

// Inquiry returns a single inquiry, visible to its owner and staff.
func (s *ContentService) Inquiry(ctx context.Context, viewer *model.User, id string) (*model.Inquiry, error) {
	q, err := s.inquiries.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if q.UserID != viewer.ID && !viewer.Role.Staff() {
		return nil, model.ErrForbidden
	}
	return q, nil
}

// CreateInquiry opens a new inquiry by the viewer.
func (s *ContentService) CreateInquiry(ctx context.Context, viewer *model.User, req model.CreateInquiryRequest) (*model.Inquiry, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Content = strings.TrimSpace(req.Content)
	if req.Title == "" {
		return nil, fmt.Errorf("%w: title is required", model.ErrValidation)
	}
	if req.Content == "" {
		return nil, fmt.Errorf("%w: content is required", model.ErrValidation)
	}

	q := model.Inquiry{
		ID:        uuid.New().String(),
		UserID:    viewer.ID,
		Title:     req.Title,
		Content:   req.Content,
		Status:    model.InquiryOpen,
		CreatedAt: s.now(),
	}
	if err := s.inquiries.Create(ctx, q); err != nil {
		return nil, err
	}
	return &q, nil
}

// AnswerInquiry records a staff answer and marks the inquiry answered.
func (s *ContentService) AnswerInquiry(ctx context.Context, staff *model.User, id, answer string) (*model.Inquiry, error) {
	if !staff.Role.Staff() {
		return nil, model.ErrForbidden
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, fmt.Errorf("%w: answer is required", model.ErrValidation)
	}

	q, err := s.inquiries.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	q.Answer = answer
	q.Status = model.InquiryAnswered
	q.AnsweredAt = &now
	if err := s.inquiries.Update(ctx, *q); err != nil {
		return nil, err
	}
	return q, nil
}

// Goal returns the viewer's reading goal for a year. Year zero means the
// current year.
func (s *ContentService) Goal(ctx context.Context, viewer *model.User, year int) (*model.ReadingGoal, error) {
	if year == 0 {
		year = s.now().Year()
	}
	return s.goals.Get(ctx, viewer.ID, year)
}

// SetGoal creates or replaces the viewer's goal for a year.
func (s *ContentService) SetGoal(ctx context.Context, viewer *model.User, req model.GoalRequest) (*model.ReadingGoal, error) {
	if req.Year == 0 {
		req.Year = s.now().Year()
	}
	if req.Target < 1 {
		return nil, fmt.Errorf("%w: target must be a positive integer", model.ErrValidation)
	}
	if req.Current < 0 {
		return nil, fmt.Errorf("%w: current cannot be negative", model.ErrValidation)
	}

	g := model.ReadingGoal{
		UserID:  viewer.ID,
		Year:    req.Year,
		Target:  req.Target,
		Current: req.Current,
	}
	if err := s.goals.Upsert(ctx, g); err != nil {
		return nil, err
	}
	return &g, nil
}

func pageBounds(total, page, perPage int) (int, int) {
	start := (page - 1) * perPage
	end := start + perPage
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	return start, end
}
