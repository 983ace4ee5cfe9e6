package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/lms-backend/internal/apierr"
)

func TestListPendingCourses(t *testing.T) {
	f := newFixture(t)
	pending, _ := f.addCourse("Draft Course", false, 1)
	f.addCourse("Live Course", true, 1)

	courses, err := f.adminSvc.ListPendingCourses(context.Background())
	if err != nil {
		t.Fatalf("ListPendingCourses: %v", err)
	}
	if len(courses) != 1 {
		t.Fatalf("pending courses: want=1 got=%d", len(courses))
	}
	if courses[0].ID != pending.ID {
		t.Fatalf("pending course id: want=%s got=%s", pending.ID, courses[0].ID)
	}
}

func TestApproveCourseMakesItVisible(t *testing.T) {
	f := newFixture(t)
	course, _ := f.addCourse("Draft Course", false, 1)

	approved, err := f.adminSvc.ApproveCourse(context.Background(), course.ID)
	if err != nil {
		t.Fatalf("ApproveCourse: %v", err)
	}
	if !approved.Approved {
		t.Fatalf("approved flag: want=true got=false")
	}

	visible, err := f.catalogSvc.ListApprovedCourses(context.Background())
	if err != nil {
		t.Fatalf("ListApprovedCourses: %v", err)
	}
	if len(visible) != 1 || visible[0].ID != course.ID {
		t.Fatalf("approved catalog: want course %s got %d courses", course.ID, len(visible))
	}

	pending, err := f.adminSvc.ListPendingCourses(context.Background())
	if err != nil {
		t.Fatalf("ListPendingCourses: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("pending after approval: want=0 got=%d", len(pending))
	}
}

func TestApproveCourseTwiceInvalidState(t *testing.T) {
	f := newFixture(t)
	course, _ := f.addCourse("Draft Course", false, 1)

	if _, err := f.adminSvc.ApproveCourse(context.Background(), course.ID); err != nil {
		t.Fatalf("first ApproveCourse: %v", err)
	}
	_, err := f.adminSvc.ApproveCourse(context.Background(), course.ID)
	if !apierr.IsKind(err, apierr.KindInvalidState) {
		t.Fatalf("second approval: want invalid_state got %v", err)
	}
}

func TestRejectCourseDeletesIt(t *testing.T) {
	f := newFixture(t)
	course, lessons := f.addCourse("Draft Course", false, 2)
	f.addQuiz(t, lessons[0].ID, 70, 0)

	if err := f.adminSvc.RejectCourse(context.Background(), course.ID); err != nil {
		t.Fatalf("RejectCourse: %v", err)
	}
	if len(f.courseRepo.courses) != 0 {
		t.Fatalf("courses after reject: want=0 got=%d", len(f.courseRepo.courses))
	}
	if len(f.lessonRepo.lessons) != 0 {
		t.Fatalf("lessons after reject: want=0 got=%d", len(f.lessonRepo.lessons))
	}
	if len(f.quizRepo.quizzes) != 0 {
		t.Fatalf("quizzes after reject: want=0 got=%d", len(f.quizRepo.quizzes))
	}
}

func TestRejectApprovedCourseInvalidState(t *testing.T) {
	f := newFixture(t)
	course, _ := f.addCourse("Live Course", true, 1)

	err := f.adminSvc.RejectCourse(context.Background(), course.ID)
	if !apierr.IsKind(err, apierr.KindInvalidState) {
		t.Fatalf("rejecting approved course: want invalid_state got %v", err)
	}
	if len(f.courseRepo.courses) != 1 {
		t.Fatalf("courses after blocked reject: want=1 got=%d", len(f.courseRepo.courses))
	}
}

func TestAdminCourseOpsUnknownCourseNotFound(t *testing.T) {
	f := newFixture(t)

	if _, err := f.adminSvc.ApproveCourse(context.Background(), uuid.New()); !apierr.IsKind(err, apierr.KindNotFound) {
		t.Fatalf("approve unknown course: want not_found got %v", err)
	}
	if err := f.adminSvc.RejectCourse(context.Background(), uuid.New()); !apierr.IsKind(err, apierr.KindNotFound) {
		t.Fatalf("reject unknown course: want not_found got %v", err)
	}
}
