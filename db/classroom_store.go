package db

import (
	"context"
	"math/rand"
	"sync"
	"time"

	gokitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"classroom-server-go/calc"
	"classroom-server-go/models"
)

const (
	studentsKey   = "students"   // JSON array of models.Student
	attendanceKey = "attendance" // JSON array of models.AttendanceRecord
	gradesKey     = "grades"     // JSON array of models.Grade
)

// ClassroomStore owns the students, attendance and grades collections and
// keeps them consistent with each other. Not-found is reported as nil or
// false; errors only come from the underlying KV or a blob that fails to
// decode.
type ClassroomStore struct {
	kv     KV
	prefix string
	logger gokitlog.Logger
	newID  func() string
	now    func() time.Time

	// serializes read-modify-write of the collections
	mu sync.Mutex
}

// Option configures a ClassroomStore
type Option func(*ClassroomStore)

// WithKeyPrefix namespaces the collection keys, e.g. "classroom_students"
func WithKeyPrefix(prefix string) Option {
	return func(s *ClassroomStore) { s.prefix = prefix }
}

func WithLogger(logger gokitlog.Logger) Option {
	return func(s *ClassroomStore) { s.logger = logger }
}

// WithIDGenerator replaces the uuid generator used for new students
func WithIDGenerator(fn func() string) Option {
	return func(s *ClassroomStore) { s.newID = fn }
}

func WithClock(fn func() time.Time) Option {
	return func(s *ClassroomStore) { s.now = fn }
}

// NewClassroomStore creates a store over kv
func NewClassroomStore(kv KV, opts ...Option) *ClassroomStore {
	s := &ClassroomStore{
		kv:     kv,
		logger: gokitlog.NewNopLogger(),
		newID:  uuid.NewString,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ClassroomStore) key(name string) string {
	return s.prefix + name
}

// Ping checks the underlying KV
func (s *ClassroomStore) Ping(ctx context.Context) error {
	return s.kv.Ping(ctx)
}

// InitializeStorage creates every absent collection as an empty array.
// Existing collections are left as they are.
func (s *ClassroomStore) InitializeStorage(ctx context.Context) error {
	for _, name := range []string{studentsKey, attendanceKey, gradesKey} {
		created, err := s.kv.SetNX(ctx, s.key(name), "[]")
		if err != nil {
			return errors.Wrapf(err, "failed to initialize %s", name)
		}
		if created {
			level.Info(s.logger).Log("msg", "created empty collection", "key", s.key(name))
		}
	}
	return nil
}

// --- Student Operations ---

// GetStudents returns every student in insertion order
func (s *ClassroomStore) GetStudents(ctx context.Context) ([]models.Student, error) {
	return loadCollection[models.Student](ctx, s.kv, s.key(studentsKey))
}

// GetStudent returns the student with the given ID, or nil
func (s *ClassroomStore) GetStudent(ctx context.Context, id string) (*models.Student, error) {
	students, err := s.GetStudents(ctx)
	if err != nil {
		return nil, err
	}
	if i := indexOfStudent(students, id); i >= 0 {
		return &students[i], nil
	}
	return nil, nil // Not found
}

// AddStudent assigns an ID and creation time to a new student and stores it
func (s *ClassroomStore) AddStudent(ctx context.Context, in models.StudentInput) (models.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	students, err := s.GetStudents(ctx)
	if err != nil {
		return models.Student{}, err
	}

	id := s.newID()
	for indexOfStudent(students, id) >= 0 {
		id = s.newID()
	}
	student := models.Student{
		ID:           id,
		Name:         in.Name,
		Registration: in.Registration,
		Email:        in.Email,
		CreatedAt:    s.now(),
	}
	students = append(students, student)

	if err := s.persist(ctx, map[string]any{studentsKey: students}); err != nil {
		return models.Student{}, err
	}
	level.Debug(s.logger).Log("msg", "added student", "id", student.ID, "name", student.Name)
	return student, nil
}

// UpdateStudent merges the set fields of upd into the stored student and
// returns the result, or nil if no student has upd.ID.
func (s *ClassroomStore) UpdateStudent(ctx context.Context, upd models.StudentUpdate) (*models.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	students, err := s.GetStudents(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOfStudent(students, upd.ID)
	if i < 0 {
		return nil, nil // Not found
	}

	student := &students[i]
	if upd.Name != nil {
		student.Name = *upd.Name
	}
	if upd.Registration != nil {
		student.Registration = *upd.Registration
	}
	if upd.Email != nil {
		student.Email = *upd.Email
	}

	if err := s.persist(ctx, map[string]any{studentsKey: students}); err != nil {
		return nil, err
	}
	level.Debug(s.logger).Log("msg", "updated student", "id", student.ID)
	updated := *student
	return &updated, nil
}

// RemoveStudent deletes the student along with its attendance entries and its
// grade. All three collections are written in one atomic step. Removing an
// unknown ID is a no-op and still reports true.
func (s *ClassroomStore) RemoveStudent(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	students, err := s.GetStudents(ctx)
	if err != nil {
		return false, err
	}
	records, err := s.GetAttendance(ctx)
	if err != nil {
		return false, err
	}
	grades, err := s.GetGrades(ctx)
	if err != nil {
		return false, err
	}

	keptStudents := students[:0]
	for _, st := range students {
		if st.ID != id {
			keptStudents = append(keptStudents, st)
		}
	}
	for i := range records {
		entries := records[i].Students[:0]
		for _, e := range records[i].Students {
			if e.ID != id {
				entries = append(entries, e)
			}
		}
		records[i].Students = entries
	}
	keptGrades := grades[:0]
	for _, g := range grades {
		if g.StudentID != id {
			keptGrades = append(keptGrades, g)
		}
	}

	err = s.persist(ctx, map[string]any{
		studentsKey:   keptStudents,
		attendanceKey: records,
		gradesKey:     keptGrades,
	})
	if err != nil {
		return false, err
	}
	level.Info(s.logger).Log("msg", "removed student", "id", id, "found", len(keptStudents) != len(students))
	return true, nil
}

// RandomStudent picks a student for the roll call, or nil if there are none
func (s *ClassroomStore) RandomStudent(ctx context.Context) (*models.Student, error) {
	students, err := s.GetStudents(ctx)
	if err != nil {
		return nil, err
	}
	if len(students) == 0 {
		return nil, nil
	}
	picked := students[rand.Intn(len(students))]
	return &picked, nil
}

// CalculateStudentAttendance is the student's attendance percentage over all
// stored records. A student never listed reads as 100.
func (s *ClassroomStore) CalculateStudentAttendance(ctx context.Context, id string) (float64, error) {
	records, err := s.GetAttendance(ctx)
	if err != nil {
		return 0, err
	}
	return calc.ComputeAttendancePercentage(id, records), nil
}

func indexOfStudent(students []models.Student, id string) int {
	for i, st := range students {
		if st.ID == id {
			return i
		}
	}
	return -1
}

// --- Persistence helpers ---

func loadCollection[T any](ctx context.Context, kv KV, key string) ([]T, error) {
	raw, ok, err := kv.Get(ctx, key)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", key)
	}
	items := []T{}
	if !ok || raw == "" {
		return items, nil
	}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, errors.Wrapf(err, "corrupt collection %s", key)
	}
	if items == nil {
		items = []T{} // stored "null"
	}
	return items, nil
}

// persist encodes each collection and writes them together
func (s *ClassroomStore) persist(ctx context.Context, collections map[string]any) error {
	values := make(map[string]string, len(collections))
	for name, items := range collections {
		data, err := json.Marshal(items)
		if err != nil {
			return errors.Wrapf(err, "failed to encode %s", name)
		}
		values[s.key(name)] = string(data)
	}
	if err := s.kv.SetAll(ctx, values); err != nil {
		level.Error(s.logger).Log("msg", "failed to persist collections", "err", err)
		return errors.Wrap(err, "failed to persist collections")
	}
	return nil
}
