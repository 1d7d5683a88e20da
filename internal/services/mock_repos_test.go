package services

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"edulink_backend/internal/live"
	"edulink_backend/internal/models"
	"edulink_backend/internal/repositories"
)

// ── Mock NotificationRepository ──

type mockNotificationRepo struct {
	notifications map[string]*models.Notification
	seq           int

	failCreate      error
	failMarkAllRead error
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{notifications: make(map[string]*models.Notification)}
}

func (m *mockNotificationRepo) CreateNotification(n *models.Notification) error {
	if m.failCreate != nil {
		return m.failCreate
	}
	if !repositories.IsValidNotificationType(n.Type) {
		return repositories.ErrInvalidNotificationData
	}
	m.seq++
	if n.ID == "" {
		n.ID = fmt.Sprintf("notif-%03d", m.seq)
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	m.notifications[n.ID] = n
	return nil
}

func (m *mockNotificationRepo) FindNotificationByID(id string) (*models.Notification, error) {
	if n, ok := m.notifications[id]; ok {
		copied := *n
		return &copied, nil
	}
	return nil, repositories.ErrNotificationNotFound
}

func (m *mockNotificationRepo) sortedForUser(userID string) []models.Notification {
	var rows []models.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			rows = append(rows, *n)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].ID < rows[j].ID
	})
	return rows
}

func (m *mockNotificationRepo) FindUserNotifications(userID string, limit int, cursor *repositories.ListCursor) ([]models.Notification, error) {
	rows := m.sortedForUser(userID)
	if cursor != nil {
		filtered := rows[:0]
		for _, n := range rows {
			if n.CreatedAt.Before(cursor.CreatedAt) ||
				(n.CreatedAt.Equal(cursor.CreatedAt) && n.ID > cursor.ID) {
				filtered = append(filtered, n)
			}
		}
		rows = filtered
	}
	if len(rows) > limit+1 {
		rows = rows[:limit+1]
	}
	return rows, nil
}

func (m *mockNotificationRepo) FindRecentNotifications(userID string, limit int) ([]models.Notification, error) {
	rows := m.sortedForUser(userID)
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (m *mockNotificationRepo) MarkAsRead(notificationID string) error {
	n, ok := m.notifications[notificationID]
	if !ok {
		return repositories.ErrNotificationNotFound
	}
	if n.IsRead {
		return nil
	}
	now := time.Now()
	n.IsRead = true
	n.ReadAt = &now
	return nil
}

func (m *mockNotificationRepo) MarkAllAsRead(userID string) error {
	if m.failMarkAllRead != nil {
		// Transactional: nothing is modified on failure.
		return m.failMarkAllRead
	}
	now := time.Now()
	for _, n := range m.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &now
		}
	}
	return nil
}

func (m *mockNotificationRepo) DeleteNotification(id string) error {
	if _, ok := m.notifications[id]; !ok {
		return repositories.ErrNotificationNotFound
	}
	delete(m.notifications, id)
	return nil
}

func (m *mockNotificationRepo) GetUnreadCount(userID string) (int64, error) {
	var count int64
	for _, n := range m.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (m *mockNotificationRepo) DeleteReadOlderThan(olderThan time.Time) ([]string, error) {
	seen := make(map[string]struct{})
	var userIDs []string
	for id, n := range m.notifications {
		if n.IsRead && n.ReadAt != nil && n.ReadAt.Before(olderThan) {
			delete(m.notifications, id)
			if _, ok := seen[n.UserID]; !ok {
				seen[n.UserID] = struct{}{}
				userIDs = append(userIDs, n.UserID)
			}
		}
	}
	return userIDs, nil
}

// ── Mock RealtimeUpdateRepository ──

type mockUpdateRepo struct {
	updates map[string]*models.RealtimeUpdate
	seq     int
}

func newMockUpdateRepo() *mockUpdateRepo {
	return &mockUpdateRepo{updates: make(map[string]*models.RealtimeUpdate)}
}

func (m *mockUpdateRepo) Create(u *models.RealtimeUpdate) error {
	m.seq++
	if u.ID == "" {
		u.ID = fmt.Sprintf("update-%03d", m.seq)
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	m.updates[u.ID] = u
	return nil
}

func (m *mockUpdateRepo) FindRecent(userID string, limit int) ([]models.RealtimeUpdate, error) {
	var rows []models.RealtimeUpdate
	for _, u := range m.updates {
		if u.UserID == userID {
			rows = append(rows, *u)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].ID < rows[j].ID
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (m *mockUpdateRepo) MarkAsRead(userID, updateID string) error {
	u, ok := m.updates[updateID]
	if !ok || u.UserID != userID {
		return repositories.ErrRealtimeUpdateNotFound
	}
	u.IsRead = true
	return nil
}

func (m *mockUpdateRepo) DeleteOlderThan(olderThan time.Time) ([]string, error) {
	seen := make(map[string]struct{})
	var userIDs []string
	for id, u := range m.updates {
		if u.CreatedAt.Before(olderThan) {
			delete(m.updates, id)
			if _, ok := seen[u.UserID]; !ok {
				seen[u.UserID] = struct{}{}
				userIDs = append(userIDs, u.UserID)
			}
		}
	}
	return userIDs, nil
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users    map[string]*models.User
	profiles map[string]*models.StudentProfile
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		users:    make(map[string]*models.User),
		profiles: make(map[string]*models.StudentProfile),
	}
}

func (m *mockUserRepo) Create(u *models.User) error {
	if u.ID == "" {
		u.ID = "user-" + u.Email
	}
	m.users[u.ID] = u
	return nil
}

func (m *mockUserRepo) FindByID(id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, repositories.ErrUserNotFound
}

func (m *mockUserRepo) FindByEmail(email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (m *mockUserRepo) FindStudentsByBatch(batchID string) ([]models.User, error) {
	var students []models.User
	for _, u := range m.users {
		if u.BatchID == batchID && u.Role == models.UserRoleStudent {
			students = append(students, *u)
		}
	}
	sort.Slice(students, func(i, j int) bool { return students[i].ID < students[j].ID })
	return students, nil
}

func (m *mockUserRepo) FindProfilesByUserIDs(userIDs []string) ([]models.StudentProfile, error) {
	var profiles []models.StudentProfile
	for _, id := range userIDs {
		if p, ok := m.profiles[id]; ok {
			profiles = append(profiles, *p)
		}
	}
	return profiles, nil
}

// ── Mock CourseRepository ──

type mockCourseRepo struct {
	courses     map[string]*models.Course
	assignments map[string]*models.Assignment
	submissions map[string]*models.Submission
	quizResults []models.QuizResult
	seq         int
}

func newMockCourseRepo() *mockCourseRepo {
	return &mockCourseRepo{
		courses:     make(map[string]*models.Course),
		assignments: make(map[string]*models.Assignment),
		submissions: make(map[string]*models.Submission),
	}
}

func (m *mockCourseRepo) CreateCourse(c *models.Course) error {
	m.seq++
	if c.ID == "" {
		c.ID = fmt.Sprintf("course-%03d", m.seq)
	}
	m.courses[c.ID] = c
	return nil
}

func (m *mockCourseRepo) FindCourseByID(id string) (*models.Course, error) {
	if c, ok := m.courses[id]; ok {
		return c, nil
	}
	return nil, repositories.ErrCourseNotFound
}

func (m *mockCourseRepo) FindCoursesByBatch(batchID string) ([]models.Course, error) {
	var rows []models.Course
	for _, c := range m.courses {
		if c.BatchID == batchID {
			rows = append(rows, *c)
		}
	}
	return rows, nil
}

func (m *mockCourseRepo) ListCourses(limit, offset int) ([]models.Course, int64, error) {
	var rows []models.Course
	for _, c := range m.courses {
		rows = append(rows, *c)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	total := int64(len(rows))
	if offset >= len(rows) {
		return nil, total, nil
	}
	rows = rows[offset:]
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, total, nil
}

func (m *mockCourseRepo) CreateAssignment(a *models.Assignment) error {
	m.seq++
	if a.ID == "" {
		a.ID = fmt.Sprintf("assign-%03d", m.seq)
	}
	m.assignments[a.ID] = a
	return nil
}

func (m *mockCourseRepo) FindAssignmentByID(id string) (*models.Assignment, error) {
	if a, ok := m.assignments[id]; ok {
		return a, nil
	}
	return nil, repositories.ErrAssignmentNotFound
}

func (m *mockCourseRepo) FindAssignmentsByCourseIDs(courseIDs []string) ([]models.Assignment, error) {
	ids := make(map[string]struct{}, len(courseIDs))
	for _, id := range courseIDs {
		ids[id] = struct{}{}
	}
	var rows []models.Assignment
	for _, a := range m.assignments {
		if _, ok := ids[a.CourseID]; ok {
			rows = append(rows, *a)
		}
	}
	return rows, nil
}

func (m *mockCourseRepo) CreateSubmission(s *models.Submission) error {
	m.seq++
	if s.ID == "" {
		s.ID = fmt.Sprintf("sub-%03d", m.seq)
	}
	m.submissions[s.ID] = s
	return nil
}

func (m *mockCourseRepo) FindSubmissionByID(id string) (*models.Submission, error) {
	if s, ok := m.submissions[id]; ok {
		return s, nil
	}
	return nil, repositories.ErrSubmissionNotFound
}

func (m *mockCourseRepo) FindSubmissionsByAssignmentIDs(assignmentIDs []string) ([]models.Submission, error) {
	ids := make(map[string]struct{}, len(assignmentIDs))
	for _, id := range assignmentIDs {
		ids[id] = struct{}{}
	}
	var rows []models.Submission
	for _, s := range m.submissions {
		if _, ok := ids[s.AssignmentID]; ok {
			rows = append(rows, *s)
		}
	}
	return rows, nil
}

func (m *mockCourseRepo) GradeSubmission(id string, grade float64) error {
	s, ok := m.submissions[id]
	if !ok {
		return repositories.ErrSubmissionNotFound
	}
	now := time.Now()
	s.Grade = &grade
	s.GradedAt = &now
	return nil
}

func (m *mockCourseRepo) CreateQuizResult(r *models.QuizResult) error {
	m.seq++
	if r.ID == "" {
		r.ID = fmt.Sprintf("quiz-%03d", m.seq)
	}
	m.quizResults = append(m.quizResults, *r)
	return nil
}

func (m *mockCourseRepo) FindQuizResultsByCourseIDs(courseIDs []string) ([]models.QuizResult, error) {
	ids := make(map[string]struct{}, len(courseIDs))
	for _, id := range courseIDs {
		ids[id] = struct{}{}
	}
	var rows []models.QuizResult
	for _, r := range m.quizResults {
		if _, ok := ids[r.CourseID]; ok {
			rows = append(rows, r)
		}
	}
	return rows, nil
}

// ── Mock ActivityRepository ──

type mockActivityRepo struct {
	records []*models.UserActivity
	fail    error
}

func newMockActivityRepo() *mockActivityRepo {
	return &mockActivityRepo{}
}

func (m *mockActivityRepo) Create(record *models.UserActivity) error {
	if m.fail != nil {
		return m.fail
	}
	m.records = append(m.records, record)
	return nil
}

// ── Mock AnalyticsRepository ──

type mockAnalyticsRepo struct {
	counts []repositories.DailySubmissionCount
	fail   error
}

func (m *mockAnalyticsRepo) CountSubmissionsPerDay(_ []string, since time.Time) ([]repositories.DailySubmissionCount, error) {
	if m.fail != nil {
		return nil, m.fail
	}
	var rows []repositories.DailySubmissionCount
	for _, c := range m.counts {
		if !c.Day.Before(since) {
			rows = append(rows, c)
		}
	}
	return rows, nil
}

// ── Mock LivePublisher / UrgentMailer ──

type mockPublisher struct {
	mu      sync.Mutex
	notifos []live.Feed
	users   []string
}

func (m *mockPublisher) Notify(userID string, feed live.Feed) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = append(m.users, userID)
	m.notifos = append(m.notifos, feed)
}

func (m *mockPublisher) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.notifos)
}

type mockMailer struct {
	sent []string // "to|title"
	fail error
}

func (m *mockMailer) SendNotificationMail(toEmail, title, _ string) error {
	if m.fail != nil {
		return m.fail
	}
	m.sent = append(m.sent, toEmail+"|"+title)
	return nil
}
