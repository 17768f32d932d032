package selection

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/grading"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/models"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/apperrors"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/metrics"
)

// DefaultFetchTimeout bounds a semester fetch when none is configured.
const DefaultFetchTimeout = 10 * time.Second

// ErrSessionClosed is returned by operations on an ended session.
var ErrSessionClosed = fmt.Errorf("%w: selection session has ended", apperrors.ErrAuthRequired)

// Session is one user's selection state. All methods are safe for
// concurrent use.
type Session struct {
	userID    int64
	fetcher   Fetcher
	publisher Publisher
	timeout   time.Duration
	logger    zerolog.Logger

	mu       sync.Mutex
	courses  map[string]*models.Course
	order    []string
	closed   bool
	lastSeen time.Time

	state    State
	course   *models.Course
	semester int
	gen      uint64
	cancel   context.CancelFunc
	settled  chan struct{}
	loading  bool
	derived  derived
	fetchErr error

	// seq orders snapshots for the publisher; stale ones are dropped
	seq           uint64
	pubMu         sync.Mutex
	lastPublished uint64
}

type derived struct {
	subjects       []models.SubjectRecord
	gpa            *models.GPAResult
	cgpa           *models.CGPAResult
	attendance     []models.AttendanceRecord
	exams          []models.ScheduleSlot
	timetable      []models.ScheduleSlot
	noResultsFound bool
	gpaUndefined   bool
	cgpaUndefined  bool
}

// NewSession creates a session in NoCourseSelected for the given enrolled
// courses. A non-positive timeout falls back to DefaultFetchTimeout.
func NewSession(userID int64, courses []models.Course, fetcher Fetcher, publisher Publisher, timeout time.Duration, logger zerolog.Logger) *Session {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	s := &Session{
		userID:    userID,
		fetcher:   fetcher,
		publisher: publisher,
		timeout:   timeout,
		logger:    logger.With().Int64("userID", userID).Str("component", "selection").Logger(),
		courses:   make(map[string]*models.Course, len(courses)),
		lastSeen:  time.Now(),
		settled:   closedChan(),
	}
	for i := range courses {
		c := courses[i]
		if _, dup := s.courses[c.ID]; dup {
			continue
		}
		s.courses[c.ID] = &c
		s.order = append(s.order, c.ID)
	}
	return s
}

// UserID returns the owner of the session.
func (s *Session) UserID() int64 {
	return s.userID
}

// Courses lists the enrolled courses in enrolment order.
func (s *Session) Courses() []models.Course {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Course, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.courses[id])
	}
	return out
}

// SelectCourse moves to CourseSelected for an enrolled course, cancelling any
// fetch in flight and clearing every derived value.
func (s *Session) SelectCourse(courseID string) (Snapshot, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Snapshot{}, ErrSessionClosed
	}
	course, ok := s.courses[courseID]
	if !ok {
		s.mu.Unlock()
		return Snapshot{}, apperrors.NewInvalidSelectionError(
			"course is not one of the student's enrolled courses",
			map[string]interface{}{"courseId": courseID},
		)
	}

	s.transitionLocked()
	s.state = CourseSelected
	s.course = course
	s.semester = 0
	close(s.settled)
	snap, seq := s.snapshotLocked(), s.nextSeqLocked()
	s.mu.Unlock()

	s.logger.Debug().Str("courseId", courseID).Uint64("generation", snap.Generation).Msg("Course selected")
	s.publish(seq, snap)
	return snap, nil
}

// DeselectCourse returns to NoCourseSelected.
func (s *Session) DeselectCourse() (Snapshot, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Snapshot{}, ErrSessionClosed
	}
	s.transitionLocked()
	s.state = NoCourseSelected
	s.course = nil
	s.semester = 0
	close(s.settled)
	snap, seq := s.snapshotLocked(), s.nextSeqLocked()
	s.mu.Unlock()

	s.publish(seq, snap)
	return snap, nil
}

// SelectSemester starts the fetch for semester n of the selected course and
// returns immediately with Loading set. Use Await to wait for the outcome.
//
// n == 0 clears the semester and goes back to CourseSelected. Any other n
// that is not a semester of the course is rejected and the state is left
// untouched, as is a semester selected with no course.
func (s *Session) SelectSemester(n int) (Snapshot, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Snapshot{}, ErrSessionClosed
	}
	if s.state == NoCourseSelected || s.course == nil {
		s.mu.Unlock()
		return Snapshot{}, apperrors.NewInvalidSelectionError("select a course before a semester", nil)
	}

	if n == 0 {
		s.transitionLocked()
		s.state = CourseSelected
		s.semester = 0
		close(s.settled)
		snap, seq := s.snapshotLocked(), s.nextSeqLocked()
		s.mu.Unlock()

		s.publish(seq, snap)
		return snap, nil
	}

	if _, ok := s.course.SemesterByNumber(n); !ok {
		courseID := s.course.ID
		valid := s.course.SemesterNumbers()
		s.mu.Unlock()
		return Snapshot{}, apperrors.NewInvalidSelectionError(
			"semester does not belong to the selected course",
			map[string]interface{}{"courseId": courseID, "semester": n, "validSemesters": valid},
		)
	}

	gen := s.transitionLocked()
	s.state = CourseAndSemesterSelected
	s.semester = n
	s.loading = true

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	s.cancel = cancel
	courseID := s.course.ID
	snap, seq := s.snapshotLocked(), s.nextSeqLocked()
	s.mu.Unlock()

	s.logger.Debug().Str("courseId", courseID).Int("semester", n).Uint64("generation", gen).Msg("Semester selected, fetching records")
	// Loading goes out before the fetch can settle
	s.publish(seq, snap)
	go s.fetch(ctx, cancel, gen, courseID, n)
	return snap, nil
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Await blocks until generation gen has settled, has been superseded, or ctx
// is done, and returns the session's snapshot at that point.
func (s *Session) Await(ctx context.Context, gen uint64) (Snapshot, error) {
	s.mu.Lock()
	if s.gen != gen {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, nil
	}
	settled := s.settled
	s.mu.Unlock()

	select {
	case <-settled:
		return s.Snapshot(), nil
	case <-ctx.Done():
		return s.Snapshot(), ctx.Err()
	}
}

// Close ends the session: any fetch in flight is cancelled and later calls
// fail with ErrSessionClosed.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.transitionLocked()
	s.state = NoCourseSelected
	s.course = nil
	s.semester = 0
	s.closed = true
	close(s.settled)
}

// Touch marks the session as used now.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

// IdleSince reports when the session was last used.
func (s *Session) IdleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// transitionLocked starts a new generation: the in-flight fetch is cancelled,
// waiters on the old generation are released and derived values are cleared.
func (s *Session) transitionLocked() uint64 {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	select {
	case <-s.settled:
	default:
		close(s.settled)
	}
	s.settled = make(chan struct{})
	s.gen++
	s.loading = false
	s.derived = derived{}
	s.fetchErr = nil
	s.lastSeen = time.Now()
	return s.gen
}

func (s *Session) fetch(ctx context.Context, cancel context.CancelFunc, gen uint64, courseID string, semester int) {
	defer cancel()
	start := time.Now()

	data, err := s.fetcher.FetchSemester(ctx, s.userID, courseID, semester)

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		metrics.ObserveFetch(metrics.OutcomeDiscarded, time.Since(start))
		s.logger.Debug().Uint64("generation", gen).Msg("Discarding result of superseded selection")
		return
	}

	outcome := metrics.OutcomeSuccess
	s.loading = false
	s.cancel = nil
	if err != nil {
		outcome = metrics.OutcomeFailed
		if errors.Is(err, context.DeadlineExceeded) {
			outcome = metrics.OutcomeTimeout
		}
		if !errors.Is(err, apperrors.ErrFetchFailed) {
			err = fmt.Errorf("%w: %w", apperrors.ErrFetchFailed, err)
		}
		s.fetchErr = err
	} else {
		s.derived = derive(data)
		if s.derived.noResultsFound {
			outcome = metrics.OutcomeEmpty
		}
	}
	close(s.settled)
	snap, seq := s.snapshotLocked(), s.nextSeqLocked()
	s.mu.Unlock()

	metrics.ObserveFetch(outcome, time.Since(start))
	if err != nil {
		s.logger.Warn().Err(err).Str("courseId", courseID).Int("semester", semester).Msg("Semester fetch failed")
	}
	s.publish(seq, snap)
}

func derive(data *SemesterData) derived {
	if data == nil {
		data = &SemesterData{}
	}
	d := derived{
		subjects:   data.Subjects,
		attendance: data.Attendance,
		exams:      data.Exams,
		timetable:  data.Timetable,
	}
	if len(data.Subjects) == 0 {
		d.noResultsFound = true
		return d
	}

	gpa, err := grading.CalculateGPA(data.Subjects)
	metrics.ObserveGrade("gpa", err)
	if err != nil {
		d.gpaUndefined = true
	} else {
		d.gpa = &gpa
	}

	cgpa, err := grading.CalculateCGPA(data.History)
	metrics.ObserveGrade("cgpa", err)
	if err != nil {
		d.cgpaUndefined = true
	} else {
		d.cgpa = &cgpa
	}
	return d
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:          s.state,
		Generation:     s.gen,
		Course:         s.course,
		Semester:       s.semester,
		Loading:        s.loading,
		Subjects:       s.derived.subjects,
		GPA:            s.derived.gpa,
		CGPA:           s.derived.cgpa,
		Attendance:     s.derived.attendance,
		Exams:          s.derived.exams,
		Timetable:      s.derived.timetable,
		NoResultsFound: s.derived.noResultsFound,
		GPAUndefined:   s.derived.gpaUndefined,
		CGPAUndefined:  s.derived.cgpaUndefined,
		err:            s.fetchErr,
	}
	if s.fetchErr != nil {
		snap.Error = s.fetchErr.Error()
	}
	return snap
}

func (s *Session) nextSeqLocked() uint64 {
	s.seq++
	return s.seq
}

// publish hands snapshots to the publisher in seq order. A snapshot taken
// before one that was already published is dropped.
func (s *Session) publish(seq uint64, snap Snapshot) {
	if s.publisher == nil {
		return
	}
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	if seq <= s.lastPublished {
		s.logger.Debug().Uint64("generation", snap.Generation).Msg("Dropping superseded snapshot")
		return
	}
	s.lastPublished = seq
	s.publisher.Publish(s.userID, snap)
}

func closedChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
