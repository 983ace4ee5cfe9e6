package services

import (
	"bytes"
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/yungbote/lms-backend/internal/certimage"
	"github.com/yungbote/lms-backend/internal/logger"
	"github.com/yungbote/lms-backend/internal/requestdata"
	"github.com/yungbote/lms-backend/internal/types"
)

type fakeUserRepo struct {
	users map[uuid.UUID]*types.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]*types.User{}}
}

func (f *fakeUserRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.User) ([]*types.User, error) {
	for _, u := range rows {
		if u.ID == uuid.Nil {
			u.ID = uuid.New()
		}
		f.users[u.ID] = u
	}
	return rows, nil
}

func (f *fakeUserRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.User, error) {
	out := make([]*types.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) GetByEmails(ctx context.Context, tx *gorm.DB, emails []string) ([]*types.User, error) {
	var out []*types.User
	for _, email := range emails {
		for _, u := range f.users {
			if u.Email == email {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

type fakeCourseRepo struct {
	courses map[uuid.UUID]*types.Course
}

func newFakeCourseRepo() *fakeCourseRepo {
	return &fakeCourseRepo{courses: map[uuid.UUID]*types.Course{}}
}

func (f *fakeCourseRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Course) ([]*types.Course, error) {
	for _, c := range rows {
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		f.courses[c.ID] = c
	}
	return rows, nil
}

func (f *fakeCourseRepo) Update(ctx context.Context, tx *gorm.DB, row *types.Course) error {
	f.courses[row.ID] = row
	return nil
}

func (f *fakeCourseRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Course, error) {
	out := make([]*types.Course, 0, len(ids))
	for _, id := range ids {
		if c, ok := f.courses[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCourseRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Course, error) {
	var out []*types.Course
	for _, c := range f.courses {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeCourseRepo) ListApproved(ctx context.Context, tx *gorm.DB) ([]*types.Course, error) {
	var out []*types.Course
	for _, c := range f.courses {
		if c.Approved {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCourseRepo) ListPending(ctx context.Context, tx *gorm.DB) ([]*types.Course, error) {
	var out []*types.Course
	for _, c := range f.courses {
		if !c.Approved {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCourseRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	for _, id := range ids {
		delete(f.courses, id)
	}
	return nil
}

type fakeLessonRepo struct {
	lessons map[uuid.UUID]*types.Lesson
}

func newFakeLessonRepo() *fakeLessonRepo {
	return &fakeLessonRepo{lessons: map[uuid.UUID]*types.Lesson{}}
}

func (f *fakeLessonRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Lesson) ([]*types.Lesson, error) {
	for _, l := range rows {
		if l.ID == uuid.Nil {
			l.ID = uuid.New()
		}
		f.lessons[l.ID] = l
	}
	return rows, nil
}

func (f *fakeLessonRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Lesson, error) {
	out := make([]*types.Lesson, 0, len(ids))
	for _, id := range ids {
		if l, ok := f.lessons[id]; ok {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeLessonRepo) GetByCourseIDOrdered(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.Lesson, error) {
	var out []*types.Lesson
	for _, l := range f.lessons {
		if l.CourseID == courseID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (f *fakeLessonRepo) FullDeleteByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) error {
	for id, l := range f.lessons {
		for _, cid := range courseIDs {
			if l.CourseID == cid {
				delete(f.lessons, id)
			}
		}
	}
	return nil
}

type fakeEnrollmentRepo struct {
	enrollments map[uuid.UUID]*types.Enrollment
}

func newFakeEnrollmentRepo() *fakeEnrollmentRepo {
	return &fakeEnrollmentRepo{enrollments: map[uuid.UUID]*types.Enrollment{}}
}

func (f *fakeEnrollmentRepo) CreateIfAbsent(ctx context.Context, tx *gorm.DB, row *types.Enrollment) (bool, error) {
	for _, e := range f.enrollments {
		if e.StudentID == row.StudentID && e.CourseID == row.CourseID {
			return false, nil
		}
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	f.enrollments[row.ID] = row
	return true, nil
}

func (f *fakeEnrollmentRepo) GetByStudentAndCourse(ctx context.Context, tx *gorm.DB, studentID, courseID uuid.UUID) (*types.Enrollment, error) {
	for _, e := range f.enrollments {
		if e.StudentID == studentID && e.CourseID == courseID {
			return e, nil
		}
	}
	return nil, nil
}

func (f *fakeEnrollmentRepo) GetByStudentID(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) ([]*types.Enrollment, error) {
	var out []*types.Enrollment
	for _, e := range f.enrollments {
		if e.StudentID == studentID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEnrollmentRepo) UpdateProgress(ctx context.Context, tx *gorm.DB, id uuid.UUID, progress float64) error {
	if e, ok := f.enrollments[id]; ok {
		e.Progress = progress
	}
	return nil
}

func (f *fakeEnrollmentRepo) AddTimeSpent(ctx context.Context, tx *gorm.DB, id uuid.UUID, seconds int64) error {
	if e, ok := f.enrollments[id]; ok {
		e.TimeSpentSeconds += seconds
	}
	return nil
}

func (f *fakeEnrollmentRepo) FullDeleteByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) error {
	for id, e := range f.enrollments {
		for _, cid := range courseIDs {
			if e.CourseID == cid {
				delete(f.enrollments, id)
			}
		}
	}
	return nil
}

type fakeLessonProgressRepo struct {
	rows       map[uuid.UUID]*types.LessonProgress
	lessonRepo *fakeLessonRepo
}

func newFakeLessonProgressRepo(lessonRepo *fakeLessonRepo) *fakeLessonProgressRepo {
	return &fakeLessonProgressRepo{rows: map[uuid.UUID]*types.LessonProgress{}, lessonRepo: lessonRepo}
}

func (f *fakeLessonProgressRepo) GetByStudentAndLesson(ctx context.Context, tx *gorm.DB, studentID, lessonID uuid.UUID) (*types.LessonProgress, error) {
	for _, p := range f.rows {
		if p.StudentID == studentID && p.LessonID == lessonID {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakeLessonProgressRepo) GetByStudentAndCourse(ctx context.Context, tx *gorm.DB, studentID, courseID uuid.UUID) ([]*types.LessonProgress, error) {
	var out []*types.LessonProgress
	for _, p := range f.rows {
		if p.StudentID != studentID {
			continue
		}
		if l, ok := f.lessonRepo.lessons[p.LessonID]; ok && l.CourseID == courseID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeLessonProgressRepo) GetByStudentID(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) ([]*types.LessonProgress, error) {
	var out []*types.LessonProgress
	for _, p := range f.rows {
		if p.StudentID == studentID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeLessonProgressRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.LessonProgress) error {
	existing, _ := f.GetByStudentAndLesson(ctx, tx, row.StudentID, row.LessonID)
	if existing != nil {
		existing.Completed = row.Completed
		existing.CompletedAt = row.CompletedAt
		existing.LastAccessedAt = row.LastAccessedAt
		return nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	f.rows[row.ID] = row
	return nil
}

func (f *fakeLessonProgressRepo) CountCompletedByStudentAndCourse(ctx context.Context, tx *gorm.DB, studentID, courseID uuid.UUID) (int64, error) {
	seen := map[uuid.UUID]struct{}{}
	for _, p := range f.rows {
		if p.StudentID != studentID || !p.Completed {
			continue
		}
		if l, ok := f.lessonRepo.lessons[p.LessonID]; ok && l.CourseID == courseID {
			seen[p.LessonID] = struct{}{}
		}
	}
	return int64(len(seen)), nil
}

func (f *fakeLessonProgressRepo) FullDeleteByLessonIDs(ctx context.Context, tx *gorm.DB, lessonIDs []uuid.UUID) error {
	for id, p := range f.rows {
		for _, lid := range lessonIDs {
			if p.LessonID == lid {
				delete(f.rows, id)
			}
		}
	}
	return nil
}

type fakeQuizRepo struct {
	quizzes      map[uuid.UUID]*types.Quiz
	questionRepo *fakeQuestionRepo
}

func newFakeQuizRepo(questionRepo *fakeQuestionRepo) *fakeQuizRepo {
	return &fakeQuizRepo{quizzes: map[uuid.UUID]*types.Quiz{}, questionRepo: questionRepo}
}

func (f *fakeQuizRepo) withQuestions(q *types.Quiz) *types.Quiz {
	rows, _ := f.questionRepo.GetByQuizID(context.Background(), nil, q.ID)
	questions := make([]types.Question, 0, len(rows))
	for _, r := range rows {
		questions = append(questions, *r)
	}
	cp := *q
	cp.Questions = questions
	return &cp
}

func (f *fakeQuizRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Quiz) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	f.quizzes[row.ID] = row
	return nil
}

func (f *fakeQuizRepo) Update(ctx context.Context, tx *gorm.DB, row *types.Quiz) error {
	if stored, ok := f.quizzes[row.ID]; ok {
		stored.PassingScore = row.PassingScore
	}
	return nil
}

func (f *fakeQuizRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Quiz, error) {
	out := make([]*types.Quiz, 0, len(ids))
	for _, id := range ids {
		if q, ok := f.quizzes[id]; ok {
			out = append(out, f.withQuestions(q))
		}
	}
	return out, nil
}

func (f *fakeQuizRepo) GetByLessonID(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID) (*types.Quiz, error) {
	for _, q := range f.quizzes {
		if q.LessonID == lessonID {
			return f.withQuestions(q), nil
		}
	}
	return nil, nil
}

func (f *fakeQuizRepo) FullDeleteByLessonIDs(ctx context.Context, tx *gorm.DB, lessonIDs []uuid.UUID) error {
	for id, q := range f.quizzes {
		for _, lid := range lessonIDs {
			if q.LessonID == lid {
				delete(f.quizzes, id)
			}
		}
	}
	return nil
}

type fakeQuestionRepo struct {
	questions map[uuid.UUID]*types.Question
}

func newFakeQuestionRepo() *fakeQuestionRepo {
	return &fakeQuestionRepo{questions: map[uuid.UUID]*types.Question{}}
}

func (f *fakeQuestionRepo) ReplaceForQuiz(ctx context.Context, tx *gorm.DB, quizID uuid.UUID, rows []*types.Question) error {
	for id, q := range f.questions {
		if q.QuizID == quizID {
			delete(f.questions, id)
		}
	}
	for i, q := range rows {
		if q.ID == uuid.Nil {
			q.ID = uuid.New()
		}
		q.QuizID = quizID
		q.Position = i
		f.questions[q.ID] = q
	}
	return nil
}

func (f *fakeQuestionRepo) GetByQuizID(ctx context.Context, tx *gorm.DB, quizID uuid.UUID) ([]*types.Question, error) {
	var out []*types.Question
	for _, q := range f.questions {
		if q.QuizID == quizID {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (f *fakeQuestionRepo) FullDeleteByQuizIDs(ctx context.Context, tx *gorm.DB, quizIDs []uuid.UUID) error {
	for id, q := range f.questions {
		for _, qid := range quizIDs {
			if q.QuizID == qid {
				delete(f.questions, id)
			}
		}
	}
	return nil
}

type fakeQuizAttemptRepo struct {
	attempts []*types.QuizAttempt
}

func newFakeQuizAttemptRepo() *fakeQuizAttemptRepo {
	return &fakeQuizAttemptRepo{}
}

func (f *fakeQuizAttemptRepo) Create(ctx context.Context, tx *gorm.DB, row *types.QuizAttempt) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	f.attempts = append(f.attempts, row)
	return nil
}

func (f *fakeQuizAttemptRepo) GetByStudentAndQuiz(ctx context.Context, tx *gorm.DB, studentID, quizID uuid.UUID) ([]*types.QuizAttempt, error) {
	var out []*types.QuizAttempt
	for _, a := range f.attempts {
		if a.StudentID == studentID && a.QuizID == quizID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompletedAt.After(out[j].CompletedAt) })
	return out, nil
}

func (f *fakeQuizAttemptRepo) FullDeleteByQuizIDs(ctx context.Context, tx *gorm.DB, quizIDs []uuid.UUID) error {
	var kept []*types.QuizAttempt
	for _, a := range f.attempts {
		match := false
		for _, qid := range quizIDs {
			if a.QuizID == qid {
				match = true
			}
		}
		if !match {
			kept = append(kept, a)
		}
	}
	f.attempts = kept
	return nil
}

type fakeCertificateRepo struct {
	certs map[uuid.UUID]*types.Certificate
}

func newFakeCertificateRepo() *fakeCertificateRepo {
	return &fakeCertificateRepo{certs: map[uuid.UUID]*types.Certificate{}}
}

func (f *fakeCertificateRepo) CreateIfAbsent(ctx context.Context, tx *gorm.DB, row *types.Certificate) (bool, error) {
	for _, c := range f.certs {
		if c.StudentID == row.StudentID && c.CourseID == row.CourseID {
			return false, nil
		}
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	f.certs[row.ID] = row
	return true, nil
}

func (f *fakeCertificateRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Certificate, error) {
	out := make([]*types.Certificate, 0, len(ids))
	for _, id := range ids {
		if c, ok := f.certs[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCertificateRepo) GetByStudentAndCourse(ctx context.Context, tx *gorm.DB, studentID, courseID uuid.UUID) (*types.Certificate, error) {
	for _, c := range f.certs {
		if c.StudentID == studentID && c.CourseID == courseID {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeCertificateRepo) GetByStudentID(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) ([]*types.Certificate, error) {
	var out []*types.Certificate
	for _, c := range f.certs {
		if c.StudentID == studentID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IssueDate.After(out[j].IssueDate) })
	return out, nil
}

func (f *fakeCertificateRepo) FullDeleteByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) error {
	for id, c := range f.certs {
		for _, cid := range courseIDs {
			if c.CourseID == cid {
				delete(f.certs, id)
			}
		}
	}
	return nil
}

type fakeRenderer struct {
	renders int
	last    certimage.Input
}

func (f *fakeRenderer) Render(in certimage.Input) (bytes.Buffer, error) {
	f.renders++
	f.last = in
	var buf bytes.Buffer
	buf.WriteString("png:" + in.Code)
	return buf, nil
}

// fixture wires the whole service graph against in-memory fakes. The sqlite
// handle exists only so transactional code paths have a real *gorm.DB to
// begin and commit on; the fakes never touch it.
type fixture struct {
	db  *gorm.DB
	log *logger.Logger

	userRepo     *fakeUserRepo
	courseRepo   *fakeCourseRepo
	lessonRepo   *fakeLessonRepo
	enrollRepo   *fakeEnrollmentRepo
	progressRepo *fakeLessonProgressRepo
	questionRepo *fakeQuestionRepo
	quizRepo     *fakeQuizRepo
	attemptRepo  *fakeQuizAttemptRepo
	certRepo     *fakeCertificateRepo

	catalogSvc  CatalogService
	certSvc     CertificateService
	enrollSvc   EnrollmentService
	progressSvc ProgressService
	quizSvc     QuizService
	statsSvc    StatsService
	adminSvc    AdminService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}

	f := &fixture{
		db:           db,
		log:          log,
		userRepo:     newFakeUserRepo(),
		courseRepo:   newFakeCourseRepo(),
		lessonRepo:   newFakeLessonRepo(),
		enrollRepo:   newFakeEnrollmentRepo(),
		questionRepo: newFakeQuestionRepo(),
		attemptRepo:  newFakeQuizAttemptRepo(),
		certRepo:     newFakeCertificateRepo(),
	}
	f.progressRepo = newFakeLessonProgressRepo(f.lessonRepo)
	f.quizRepo = newFakeQuizRepo(f.questionRepo)

	f.certSvc = NewCertificateService(db, log, f.certRepo, f.userRepo, f.courseRepo, nil)
	f.enrollSvc = NewEnrollmentService(db, log, f.courseRepo, f.enrollRepo, f.certSvc, nil)
	f.progressSvc = NewProgressService(db, log, f.courseRepo, f.lessonRepo, f.enrollRepo, f.progressRepo, f.enrollSvc, nil)
	f.quizSvc = NewQuizService(db, log, f.lessonRepo, f.quizRepo, f.questionRepo, f.attemptRepo, f.progressSvc, nil)
	f.catalogSvc = NewCatalogService(db, log, f.courseRepo, f.lessonRepo, f.enrollRepo, f.progressRepo, f.quizRepo, f.questionRepo, f.attemptRepo, f.certRepo)
	f.statsSvc = NewStatsService(db, log, f.enrollRepo, f.progressRepo, nil)
	f.adminSvc = NewAdminService(db, log, f.courseRepo, f.catalogSvc)
	return f
}

func (f *fixture) addStudent(name string) (*types.User, context.Context) {
	student := &types.User{
		ID:        uuid.New(),
		Email:     name + "@example.com",
		FirstName: name,
		LastName:  "Student",
		Role:      types.RoleStudent,
	}
	f.userRepo.users[student.ID] = student
	ctx := requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		UserID:   student.ID,
		FullName: student.FullName(),
		Role:     student.Role,
	})
	return student, ctx
}

func (f *fixture) addCourse(title string, approved bool, lessonCount int) (*types.Course, []*types.Lesson) {
	course := &types.Course{
		ID:           uuid.New(),
		InstructorID: uuid.New(),
		Title:        title,
		Approved:     approved,
	}
	f.courseRepo.courses[course.ID] = course

	lessons := make([]*types.Lesson, 0, lessonCount)
	for i := 0; i < lessonCount; i++ {
		lesson := &types.Lesson{
			ID:       uuid.New(),
			CourseID: course.ID,
			Title:    title + " lesson",
			Position: i,
		}
		f.lessonRepo.lessons[lesson.ID] = lesson
		lessons = append(lessons, lesson)
	}
	return course, lessons
}

func (f *fixture) addQuiz(t *testing.T, lessonID uuid.UUID, passingScore int, correct ...int) *types.Quiz {
	t.Helper()
	quiz := &types.Quiz{
		ID:           uuid.New(),
		LessonID:     lessonID,
		PassingScore: passingScore,
	}
	f.quizRepo.quizzes[quiz.ID] = quiz
	rows := make([]*types.Question, 0, len(correct))
	for i, c := range correct {
		q := &types.Question{Text: "q", CorrectOptionIndex: c, Position: i}
		if err := q.SetOptions([]string{"a", "b", "c", "d"}); err != nil {
			t.Fatalf("SetOptions: %v", err)
		}
		rows = append(rows, q)
	}
	if err := f.questionRepo.ReplaceForQuiz(context.Background(), nil, quiz.ID, rows); err != nil {
		t.Fatalf("ReplaceForQuiz: %v", err)
	}
	return quiz
}

func (f *fixture) enrollmentRow(studentID, courseID uuid.UUID) *types.Enrollment {
	row, _ := f.enrollRepo.GetByStudentAndCourse(context.Background(), nil, studentID, courseID)
	return row
}

func timePtr(t time.Time) *time.Time { return &t }
