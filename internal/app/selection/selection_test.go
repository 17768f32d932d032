package selection

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/models"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/apperrors"
)

type fetchCall struct {
	courseID string
	semester int
}

// fakeFetcher answers from a table keyed by semester. A semester listed in
// block waits until its channel is closed or the context ends.
type fakeFetcher struct {
	mu    sync.Mutex
	data  map[int]*SemesterData
	errs  map[int]error
	block map[int]chan struct{}
	calls []fetchCall
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		data:  map[int]*SemesterData{},
		errs:  map[int]error{},
		block: map[int]chan struct{}{},
	}
}

func (f *fakeFetcher) FetchSemester(ctx context.Context, userID int64, courseID string, semester int) (*SemesterData, error) {
	f.mu.Lock()
	f.calls = append(f.calls, fetchCall{courseID, semester})
	gate := f.block[semester]
	data, err := f.data[semester], f.errs[semester]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return data, err
}

type recordingPublisher struct {
	mu    sync.Mutex
	snaps []Snapshot
}

func (p *recordingPublisher) Publish(userID int64, snap Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snaps = append(p.snaps, snap)
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.snaps)
}

// slowPublisher encodes each snapshot and then stalls, like the hub does
// before queueing a frame.
type slowPublisher struct {
	recordingPublisher
	delay time.Duration
}

func (p *slowPublisher) Publish(userID int64, snap Snapshot) {
	_, _ = json.Marshal(snap)
	time.Sleep(p.delay)
	p.recordingPublisher.Publish(userID, snap)
}

func (p *recordingPublisher) last() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snaps[len(p.snaps)-1]
}

func testCourses() []models.Course {
	return []models.Course{
		{ID: "CS", Name: "Computer Science", Semesters: []models.Semester{
			{ID: "cs-1", SemesterNumber: 1},
			{ID: "cs-2", SemesterNumber: 2},
		}},
		{ID: "SE", Name: "Software Engineering", Semesters: []models.Semester{
			{ID: "se-1", SemesterNumber: 1},
		}},
	}
}

func semesterOne() *SemesterData {
	subjects := []models.SubjectRecord{
		{Code: "CS101", CreditHours: 3, Grade: "A"},
		{Code: "CS102", CreditHours: 4, Grade: "B"},
	}
	return &SemesterData{
		Subjects: subjects,
		History: []models.SemesterResult{
			{CourseID: "CS", SemesterNumber: 1, Subjects: subjects},
			{CourseID: "CS", SemesterNumber: 2, Subjects: []models.SubjectRecord{{Code: "CS201", CreditHours: 3, Grade: "C"}}},
		},
		Attendance: []models.AttendanceRecord{{SubjectName: "CS101", Reason: "MC"}},
		Exams:      []models.ScheduleSlot{{Name: "CS101 Final", Semester: 1, CourseID: "CS"}},
	}
}

func newTestSession(f Fetcher, timeout time.Duration) (*Session, *recordingPublisher) {
	pub := &recordingPublisher{}
	return NewSession(7, testCourses(), f, pub, timeout, zerolog.Nop()), pub
}

func selectAndAwait(t *testing.T, s *Session, n int) Snapshot {
	t.Helper()
	snap, err := s.SelectSemester(n)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	out, err := s.Await(ctx, snap.Generation)
	require.NoError(t, err)
	return out
}

func TestSession_InitialState(t *testing.T) {
	s, _ := newTestSession(newFakeFetcher(), 0)
	snap := s.Snapshot()

	assert.Equal(t, NoCourseSelected, snap.State)
	assert.Nil(t, snap.Course)
	assert.False(t, snap.Loading)
	assert.Len(t, s.Courses(), 2)
	assert.Equal(t, DefaultFetchTimeout, s.timeout)
}

func TestSession_SelectCourse(t *testing.T) {
	s, pub := newTestSession(newFakeFetcher(), time.Second)

	snap, err := s.SelectCourse("CS")
	require.NoError(t, err)
	assert.Equal(t, CourseSelected, snap.State)
	assert.Equal(t, "CS", snap.CourseID())
	assert.Zero(t, snap.Semester)
	assert.Equal(t, 1, pub.count())
}

func TestSession_SelectCourse_NotEnrolled(t *testing.T) {
	s, _ := newTestSession(newFakeFetcher(), time.Second)
	_, err := s.SelectCourse("CS")
	require.NoError(t, err)
	before := s.Snapshot()

	_, err = s.SelectCourse("MATH")
	assert.ErrorIs(t, err, apperrors.ErrInvalidSelection)
	assert.Equal(t, before, s.Snapshot())
}

func TestSession_SelectSemester_Success(t *testing.T) {
	f := newFakeFetcher()
	f.data[1] = semesterOne()
	s, pub := newTestSession(f, time.Second)
	_, err := s.SelectCourse("CS")
	require.NoError(t, err)

	snap := selectAndAwait(t, s, 1)

	assert.Equal(t, CourseAndSemesterSelected, snap.State)
	assert.Equal(t, 1, snap.Semester)
	assert.False(t, snap.Loading)
	require.NotNil(t, snap.GPA)
	assert.Equal(t, 3.43, snap.GPA.GPA)
	assert.Equal(t, 7.0, snap.GPA.SemesterCredits)
	require.NotNil(t, snap.CGPA)
	// 30 points over 10 credits
	assert.Equal(t, 3.0, snap.CGPA.CGPA)
	assert.Equal(t, 10.0, snap.CGPA.TotalCreditHoursEarned)
	assert.Len(t, snap.Attendance, 1)
	assert.Len(t, snap.Exams, 1)
	assert.False(t, snap.NoResultsFound)
	assert.Empty(t, snap.Error)
	assert.NoError(t, snap.Err())
	assert.Equal(t, []fetchCall{{"CS", 1}}, f.calls)
	// course selected, semester loading, semester settled
	assert.Eventually(t, func() bool { return pub.count() == 3 }, time.Second, 5*time.Millisecond)
}

func TestSession_SelectCourse_ResetsDerivedState(t *testing.T) {
	f := newFakeFetcher()
	f.data[1] = semesterOne()
	s, _ := newTestSession(f, time.Second)
	_, err := s.SelectCourse("CS")
	require.NoError(t, err)
	selectAndAwait(t, s, 1)

	snap, err := s.SelectCourse("SE")
	require.NoError(t, err)

	assert.Equal(t, CourseSelected, snap.State)
	assert.Zero(t, snap.Semester)
	assert.Nil(t, snap.Subjects)
	assert.Nil(t, snap.GPA)
	assert.Nil(t, snap.CGPA)
	assert.Nil(t, snap.Attendance)
	assert.Nil(t, snap.Exams)
	assert.Nil(t, snap.Timetable)
	assert.False(t, snap.NoResultsFound)
	assert.Empty(t, snap.Error)
}

func TestSession_NoResultsVersusError(t *testing.T) {
	f := newFakeFetcher()
	f.data[1] = &SemesterData{}
	f.errs[2] = errors.New("store unavailable")
	s, _ := newTestSession(f, time.Second)
	_, err := s.SelectCourse("CS")
	require.NoError(t, err)

	empty := selectAndAwait(t, s, 1)
	assert.True(t, empty.NoResultsFound)
	assert.Empty(t, empty.Error)
	assert.Nil(t, empty.GPA)
	assert.Nil(t, empty.CGPA)

	failed := selectAndAwait(t, s, 2)
	assert.False(t, failed.NoResultsFound)
	assert.NotEmpty(t, failed.Error)
	assert.ErrorIs(t, failed.Err(), apperrors.ErrFetchFailed)
	assert.Nil(t, failed.Subjects)
}

func TestSession_ZeroCreditsMarksGPAUndefined(t *testing.T) {
	f := newFakeFetcher()
	zero := []models.SubjectRecord{{Code: "X1", CreditHours: 0, Grade: "A"}}
	f.data[1] = &SemesterData{
		Subjects: zero,
		History:  []models.SemesterResult{{CourseID: "CS", SemesterNumber: 1, Subjects: zero}},
	}
	s, _ := newTestSession(f, time.Second)
	_, err := s.SelectCourse("CS")
	require.NoError(t, err)

	snap := selectAndAwait(t, s, 1)
	assert.True(t, snap.GPAUndefined)
	assert.True(t, snap.CGPAUndefined)
	assert.Nil(t, snap.GPA)
	assert.False(t, snap.NoResultsFound)
	assert.Empty(t, snap.Error)
}

func TestSession_FetchTimeout(t *testing.T) {
	f := newFakeFetcher()
	f.block[1] = make(chan struct{})
	s, _ := newTestSession(f, 20*time.Millisecond)
	_, err := s.SelectCourse("CS")
	require.NoError(t, err)

	snap := selectAndAwait(t, s, 1)
	assert.ErrorIs(t, snap.Err(), apperrors.ErrFetchFailed)
	assert.ErrorIs(t, snap.Err(), context.DeadlineExceeded)
	assert.False(t, snap.Loading)
	assert.False(t, snap.NoResultsFound)
}

func TestSession_LastSelectionWins(t *testing.T) {
	f := newFakeFetcher()
	slow := make(chan struct{})
	f.block[1] = slow
	f.data[1] = semesterOne()
	f.data[2] = &SemesterData{Subjects: []models.SubjectRecord{{Code: "CS201", CreditHours: 3, Grade: "C"}}}
	s, _ := newTestSession(f, time.Second)
	_, err := s.SelectCourse("CS")
	require.NoError(t, err)

	first, err := s.SelectSemester(1)
	require.NoError(t, err)
	assert.True(t, first.Loading)

	second := selectAndAwait(t, s, 2)
	close(slow)

	// the superseded generation resolves immediately with the current snapshot
	stale, err := s.Await(context.Background(), first.Generation)
	require.NoError(t, err)
	assert.Equal(t, second.Generation, stale.Generation)

	assert.Never(t, func() bool {
		return s.Snapshot().Semester != 2
	}, 50*time.Millisecond, 5*time.Millisecond)
	final := s.Snapshot()
	require.Len(t, final.Subjects, 1)
	assert.Equal(t, "CS201", final.Subjects[0].Code)
	assert.Equal(t, 2.0, final.GPA.GPA)
}

func TestSession_SelectSemester_Invalid(t *testing.T) {
	s, _ := newTestSession(newFakeFetcher(), time.Second)

	_, err := s.SelectSemester(1)
	assert.ErrorIs(t, err, apperrors.ErrInvalidSelection, "semester before course")

	_, err = s.SelectCourse("SE")
	require.NoError(t, err)
	before := s.Snapshot()

	_, err = s.SelectSemester(2)
	assert.ErrorIs(t, err, apperrors.ErrInvalidSelection)
	var custom *apperrors.CustomError
	require.ErrorAs(t, err, &custom)
	assert.Equal(t, []int{1}, custom.Details["validSemesters"])

	_, err = s.SelectSemester(-1)
	assert.ErrorIs(t, err, apperrors.ErrInvalidSelection)
	assert.Equal(t, before, s.Snapshot())
}

func TestSession_SemesterZeroDegrades(t *testing.T) {
	f := newFakeFetcher()
	f.data[1] = semesterOne()
	s, _ := newTestSession(f, time.Second)
	_, err := s.SelectCourse("CS")
	require.NoError(t, err)
	selectAndAwait(t, s, 1)

	snap, err := s.SelectSemester(0)
	require.NoError(t, err)
	assert.Equal(t, CourseSelected, snap.State)
	assert.Equal(t, "CS", snap.CourseID())
	assert.Nil(t, snap.GPA)
	assert.Nil(t, snap.Subjects)
}

func TestSession_DeselectCourse(t *testing.T) {
	f := newFakeFetcher()
	f.block[1] = make(chan struct{})
	s, _ := newTestSession(f, time.Second)
	_, err := s.SelectCourse("CS")
	require.NoError(t, err)
	loading, err := s.SelectSemester(1)
	require.NoError(t, err)

	snap, err := s.DeselectCourse()
	require.NoError(t, err)
	assert.Equal(t, NoCourseSelected, snap.State)
	assert.Nil(t, snap.Course)
	assert.False(t, snap.Loading)

	// waiting on the cancelled fetch returns without blocking
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err = s.Await(ctx, loading.Generation)
	assert.NoError(t, err)
}

func TestSession_AwaitHonoursContext(t *testing.T) {
	f := newFakeFetcher()
	f.block[1] = make(chan struct{})
	s, _ := newTestSession(f, time.Minute)
	_, err := s.SelectCourse("CS")
	require.NoError(t, err)
	snap, err := s.SelectSemester(1)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	out, err := s.Await(ctx, snap.Generation)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, out.Loading)
	s.Close()
}

func TestSession_Closed(t *testing.T) {
	s, _ := newTestSession(newFakeFetcher(), time.Second)
	s.Close()
	s.Close()

	_, err := s.SelectCourse("CS")
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.ErrorIs(t, err, apperrors.ErrAuthRequired)
	_, err = s.SelectSemester(1)
	assert.ErrorIs(t, err, ErrSessionClosed)
	_, err = s.DeselectCourse()
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "CourseSelected", CourseSelected.String())
	assert.Equal(t, "State(9)", State(9).String())
	text, err := CourseAndSemesterSelected.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "CourseAndSemesterSelected", string(text))
}

type fakeLoader struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (l *fakeLoader) EnrolledCourses(ctx context.Context, userID int64) ([]models.Course, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	return testCourses(), nil
}

func sessionCount(m *Manager) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func TestManager_Session(t *testing.T) {
	loader := &fakeLoader{}
	m := NewManager(loader, newFakeFetcher(), nil, ManagerConfig{FetchTimeout: time.Second}, zerolog.Nop())

	_, err := m.Session(context.Background(), 0)
	assert.ErrorIs(t, err, apperrors.ErrAuthRequired)

	first, err := m.Session(context.Background(), 42)
	require.NoError(t, err)
	again, err := m.Session(context.Background(), 42)
	require.NoError(t, err)
	assert.Same(t, first, again)
	assert.Equal(t, 1, loader.calls)
	assert.Equal(t, 1, sessionCount(m))

	m.End(42)
	assert.Equal(t, 0, sessionCount(m))
	_, err = first.SelectCourse("CS")
	assert.ErrorIs(t, err, ErrSessionClosed)
	m.End(42)
}

func TestManager_LoaderFailure(t *testing.T) {
	m := NewManager(&fakeLoader{err: errors.New("connection refused")}, newFakeFetcher(), nil, ManagerConfig{}, zerolog.Nop())

	_, err := m.Session(context.Background(), 5)
	assert.ErrorIs(t, err, apperrors.ErrFetchFailed)
	assert.Equal(t, 0, sessionCount(m))
}

func TestManager_Sweep(t *testing.T) {
	m := NewManager(&fakeLoader{}, newFakeFetcher(), nil, ManagerConfig{IdleTimeout: time.Minute}, zerolog.Nop())
	_, err := m.Session(context.Background(), 1)
	require.NoError(t, err)
	_, err = m.Session(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, 0, m.Sweep(time.Now()))
	assert.Equal(t, 2, m.Sweep(time.Now().Add(2*time.Minute)))
	assert.Equal(t, 0, sessionCount(m))

	noIdle := NewManager(&fakeLoader{}, newFakeFetcher(), nil, ManagerConfig{}, zerolog.Nop())
	_, err = noIdle.Session(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 0, noIdle.Sweep(time.Now().Add(time.Hour)))
	noIdle.Shutdown()
	assert.Equal(t, 0, sessionCount(noIdle))
}

func TestPublisherFunc(t *testing.T) {
	var got int64
	p := PublisherFunc(func(userID int64, snap Snapshot) { got = userID })
	p.Publish(9, Snapshot{})
	assert.Equal(t, int64(9), got)
}

func TestSession_PublishesSettledSnapshotLast(t *testing.T) {
	for i := 0; i < 50; i++ {
		f := newFakeFetcher()
		f.data[1] = semesterOne()
		pub := &slowPublisher{delay: 200 * time.Microsecond}
		s := NewSession(7, testCourses(), f, pub, time.Second, zerolog.Nop())
		_, err := s.SelectCourse("CS")
		require.NoError(t, err)

		selectAndAwait(t, s, 1)

		require.Eventually(t, func() bool { return pub.count() == 3 }, time.Second, time.Millisecond)
		last := pub.last()
		assert.False(t, last.Loading, "run %d", i)
		require.NotNil(t, last.GPA)
		assert.Equal(t, 3.43, last.GPA.GPA)
	}
}

func TestSession_PublishOrderUnderConcurrentSelections(t *testing.T) {
	f := newFakeFetcher()
	f.data[1] = semesterOne()
	f.data[2] = &SemesterData{}
	pub := &slowPublisher{delay: 100 * time.Microsecond}
	s := NewSession(7, testCourses(), f, pub, time.Second, zerolog.Nop())
	_, err := s.SelectCourse("CS")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, n := range []int{1, 2, 1, 2} {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, _ = s.SelectSemester(n)
		}(n)
	}
	wg.Wait()

	final := s.Snapshot()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	final, err = s.Await(ctx, final.Generation)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		last := pub.last()
		return last.Generation == final.Generation && !last.Loading
	}, time.Second, time.Millisecond)

	pub.mu.Lock()
	defer pub.mu.Unlock()
	for i := 1; i < len(pub.snaps); i++ {
		assert.GreaterOrEqual(t, pub.snaps[i].Generation, pub.snaps[i-1].Generation)
	}
}
