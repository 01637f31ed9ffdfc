package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booklend/internal/model"
	"booklend/internal/repository"
	"booklend/internal/service"
)

var admin = &model.User{ID: "u-admin", Name: "관리자", Role: model.RoleAdmin}

func newContentService(t *testing.T, announcements []model.Announcement, inquiries []model.Inquiry) *service.ContentService {
	t.Helper()
	return service.NewContentService(
		repository.NewAnnouncementRepository(0, announcements),
		repository.NewInquiryRepository(0, inquiries),
		repository.NewGoalRepository(0, nil),
	)
}

func TestAnnouncements_PinnedFirstThenNewest(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	svc := newContentService(t, []model.Announcement{
		{ID: "a1", Title: "오래된 공지", CreatedAt: base},
		{ID: "a2", Title: "고정 공지", Pinned: true, CreatedAt: base.Add(-24 * time.Hour)},
		{ID: "a3", Title: "최신 공지", CreatedAt: base.Add(24 * time.Hour)},
	}, nil)

	page, err := svc.Announcements(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Equal(t, "a2", page.Items[0].ID)
	assert.Equal(t, "a3", page.Items[1].ID)
	assert.Equal(t, "a1", page.Items[2].ID)
}

func TestCreateAnnouncement_StaffOnlyAndValidated(t *testing.T) {
	ctx := context.Background()
	svc := newContentService(t, nil, nil)

	_, err := svc.CreateAnnouncement(ctx, alice, model.CreateAnnouncementRequest{Title: "t", Content: "c"})
	assert.ErrorIs(t, err, model.ErrForbidden)

	_, err = svc.CreateAnnouncement(ctx, admin, model.CreateAnnouncementRequest{Title: " ", Content: "c"})
	assert.ErrorIs(t, err, model.ErrValidation)

	ann, err := svc.CreateAnnouncement(ctx, admin, model.CreateAnnouncementRequest{
		Title:   "6월 휴관 안내",
		Content: "재물조사로 하루 휴관합니다.",
		Pinned:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, admin.Name, ann.Author)
	assert.True(t, ann.Pinned)

	got, err := svc.Announcement(ctx, ann.ID)
	require.NoError(t, err)
	assert.Equal(t, ann.Title, got.Title)
}

func TestInquiries_UsersSeeOnlyTheirOwn(t *testing.T) {
	ctx := context.Background()
	svc := newContentService(t, nil, []model.Inquiry{
		{ID: "q1", UserID: alice.ID, Title: "문의1", Status: model.InquiryOpen, CreatedAt: time.Now()},
		{ID: "q2", UserID: bob.ID, Title: "문의2", Status: model.InquiryOpen, CreatedAt: time.Now().Add(time.Minute)},
	})

	mine, err := svc.Inquiries(ctx, alice, 1, 10)
	require.NoError(t, err)
	require.Len(t, mine.Items, 1)
	assert.Equal(t, "q1", mine.Items[0].ID)

	all, err := svc.Inquiries(ctx, admin, 1, 10)
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)

	// foreign inquiry detail is forbidden for regular users
	_, err = svc.Inquiry(ctx, alice, "q2")
	assert.ErrorIs(t, err, model.ErrForbidden)

	_, err = svc.Inquiry(ctx, admin, "q2")
	assert.NoError(t, err)
}

func TestAnswerInquiry(t *testing.T) {
	ctx := context.Background()
	svc := newContentService(t, nil, []model.Inquiry{
		{ID: "q1", UserID: alice.ID, Title: "문의", Status: model.InquiryOpen, CreatedAt: time.Now()},
	})

	_, err := svc.AnswerInquiry(ctx, alice, "q1", "답변")
	assert.ErrorIs(t, err, model.ErrForbidden)

	_, err = svc.AnswerInquiry(ctx, admin, "q1", "  ")
	assert.ErrorIs(t, err, model.ErrValidation)

	answered, err := svc.AnswerInquiry(ctx, admin, "q1", "다음 분기에 반영하겠습니다.")
	require.NoError(t, err)
	assert.Equal(t, model.InquiryAnswered, answered.Status)
	assert.NotNil(t, answered.AnsweredAt)
}

func TestCreateInquiry_Validated(t *testing.T) {
	ctx := context.Background()
	svc := newContentService(t, nil, nil)

	_, err := svc.CreateInquiry(ctx, alice, model.CreateInquiryRequest{Title: "", Content: "c"})
	assert.ErrorIs(t, err, model.ErrValidation)

	q, err := svc.CreateInquiry(ctx, alice, model.CreateInquiryRequest{Title: "희망 도서", Content: "구매 부탁드립니다"})
	require.NoError(t, err)
	assert.Equal(t, model.InquiryOpen, q.Status)
	assert.Equal(t, alice.ID, q.UserID)
}

func TestGoals_UpsertAndGet(t *testing.T) {
	ctx := context.Background()
	svc := newContentService(t, nil, nil)

	_, err := svc.Goal(ctx, alice, 0)
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = svc.SetGoal(ctx, alice, model.GoalRequest{Target: 0})
	assert.ErrorIs(t, err, model.ErrValidation)

	goal, err := svc.SetGoal(ctx, alice, model.GoalRequest{Year: 2025, Target: 24, Current: 7})
	require.NoError(t, err)
	assert.Equal(t, alice.ID, goal.UserID)

	got, err := svc.Goal(ctx, alice, 2025)
	require.NoError(t, err)
	assert.Equal(t, 24, got.Target)
	assert.Equal(t, 7, got.Current)
}

func TestDashboardStats(t *testing.T) {
	ctx := context.Background()
	f := newLendingFixture(t,
		testBook("bk-1", 2, func(b *model.Book) { b.TimesBorrowed = 10 }),
		testBook("bk-2", 1, func(b *model.Book) { b.Category = "인문"; b.TimesBorrowed = 3 }),
	)
	users := repository.NewUserRepository(0, []model.User{{ID: alice.ID}, {ID: bob.ID}})
	stats := service.NewStatsService(f.books, f.loans, f.reservations, users)

	_, err := f.lending.Borrow(ctx, alice, "bk-2")
	require.NoError(t, err)
	_, err = f.lending.ToggleReserve(ctx, bob, "bk-2")
	require.NoError(t, err)

	got, err := stats.Dashboard(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, got.TotalBooks)
	assert.Equal(t, 3, got.TotalCopies)
	assert.Equal(t, 1, got.ActiveLoans)
	assert.Equal(t, 0, got.OverdueLoans)
	assert.Equal(t, 1, got.QueuedReservations)
	assert.Equal(t, 2, got.TotalUsers)
	assert.Equal(t, map[string]int{"개발": 1, "인문": 1}, got.BooksByCategory)
	require.NotEmpty(t, got.TopBorrowed)
	assert.Equal(t, "bk-1", got.TopBorrowed[0].ID)
}
