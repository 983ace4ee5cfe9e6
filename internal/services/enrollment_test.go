package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/lms-backend/internal/apierr"
)

func TestEnrollCreatesSingleRow(t *testing.T) {
	f := newFixture(t)
	student, ctx := f.addStudent("alice")
	course, _ := f.addCourse("Go Basics", true, 2)

	enrollment, err := f.enrollSvc.Enroll(ctx, course.ID)
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if enrollment.StudentID != student.ID || enrollment.CourseID != course.ID {
		t.Fatalf("enrollment keys: want=(%s,%s) got=(%s,%s)", student.ID, course.ID, enrollment.StudentID, enrollment.CourseID)
	}
	if enrollment.Progress != 0 {
		t.Fatalf("initial progress: want=0 got=%v", enrollment.Progress)
	}
	if len(f.enrollRepo.enrollments) != 1 {
		t.Fatalf("enrollment rows: want=1 got=%d", len(f.enrollRepo.enrollments))
	}
}

func TestEnrollTwiceReturnsConflict(t *testing.T) {
	f := newFixture(t)
	_, ctx := f.addStudent("alice")
	course, _ := f.addCourse("Go Basics", true, 2)

	if _, err := f.enrollSvc.Enroll(ctx, course.ID); err != nil {
		t.Fatalf("first Enroll: %v", err)
	}
	_, err := f.enrollSvc.Enroll(ctx, course.ID)
	if !apierr.IsKind(err, apierr.KindConflict) {
		t.Fatalf("second Enroll: want conflict got %v", err)
	}
	if len(f.enrollRepo.enrollments) != 1 {
		t.Fatalf("enrollment rows after duplicate: want=1 got=%d", len(f.enrollRepo.enrollments))
	}
}

func TestEnrollUnapprovedCourseRejected(t *testing.T) {
	f := newFixture(t)
	_, ctx := f.addStudent("alice")
	course, _ := f.addCourse("Draft Course", false, 1)

	_, err := f.enrollSvc.Enroll(ctx, course.ID)
	if !apierr.IsKind(err, apierr.KindInvalidState) {
		t.Fatalf("Enroll unapproved: want invalid_state got %v", err)
	}
}

func TestEnrollWithoutIdentityUnauthorized(t *testing.T) {
	f := newFixture(t)
	course, _ := f.addCourse("Go Basics", true, 1)

	_, err := f.enrollSvc.Enroll(context.Background(), course.ID)
	if !apierr.IsKind(err, apierr.KindUnauthorized) {
		t.Fatalf("Enroll without identity: want unauthorized got %v", err)
	}
}

func TestEnrollUnknownCourseNotFound(t *testing.T) {
	f := newFixture(t)
	_, ctx := f.addStudent("alice")

	_, err := f.enrollSvc.Enroll(ctx, uuid.New())
	if !apierr.IsKind(err, apierr.KindNotFound) {
		t.Fatalf("Enroll unknown course: want not_found got %v", err)
	}
}

func TestTrackTimeAccumulatesAndClampsNegative(t *testing.T) {
	f := newFixture(t)
	student, ctx := f.addStudent("alice")
	course, _ := f.addCourse("Go Basics", true, 1)

	if _, err := f.enrollSvc.Enroll(ctx, course.ID); err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if err := f.enrollSvc.TrackTime(ctx, course.ID, 120); err != nil {
		t.Fatalf("TrackTime: %v", err)
	}
	if err := f.enrollSvc.TrackTime(ctx, course.ID, 180); err != nil {
		t.Fatalf("TrackTime: %v", err)
	}
	if err := f.enrollSvc.TrackTime(ctx, course.ID, -500); err != nil {
		t.Fatalf("TrackTime negative: %v", err)
	}

	row := f.enrollmentRow(student.ID, course.ID)
	if row.TimeSpentSeconds != 300 {
		t.Fatalf("time spent: want=300 got=%d", row.TimeSpentSeconds)
	}
}

func TestTrackTimeWithoutEnrollmentNotFound(t *testing.T) {
	f := newFixture(t)
	_, ctx := f.addStudent("alice")
	course, _ := f.addCourse("Go Basics", true, 1)

	err := f.enrollSvc.TrackTime(ctx, course.ID, 60)
	if !apierr.IsKind(err, apierr.KindNotFound) {
		t.Fatalf("TrackTime unenrolled: want not_found got %v", err)
	}
}

func TestListAvailableExcludesEnrolled(t *testing.T) {
	f := newFixture(t)
	_, ctx := f.addStudent("alice")
	enrolled, _ := f.addCourse("Enrolled Course", true, 1)
	open, _ := f.addCourse("Open Course", true, 1)
	f.addCourse("Draft Course", false, 1)

	if _, err := f.enrollSvc.Enroll(ctx, enrolled.ID); err != nil {
		t.Fatalf("Enroll: %v", err)
	}

	available, err := f.enrollSvc.ListAvailable(ctx)
	if err != nil {
		t.Fatalf("ListAvailable: %v", err)
	}
	if len(available) != 1 || available[0].ID != open.ID {
		t.Fatalf("available courses: want=[%s] got=%v", open.ID, available)
	}

	mine, err := f.enrollSvc.ListEnrolled(ctx)
	if err != nil {
		t.Fatalf("ListEnrolled: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != enrolled.ID {
		t.Fatalf("enrolled courses: want=[%s] got=%v", enrolled.ID, mine)
	}
}
