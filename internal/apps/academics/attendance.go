package academics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/zaroda/school-backend/internal/models"
	"github.com/zaroda/school-backend/internal/storage"
	"github.com/zaroda/school-backend/internal/tenant"
)

const dateLayout = "2006-01-02"

// Mark is one student's status in an attendance submission.
type Mark struct {
	StudentID string                  `json:"student_id"`
	Status    models.AttendanceStatus `json:"status"`
}

type AttendanceSummary struct {
	Date    string `json:"date"`
	Total   int    `json:"total"`
	Present int    `json:"present"`
	Absent  int    `json:"absent"`
	Late    int    `json:"late"`
	Excused int    `json:"excused"`
}

// AttendanceLedger stores marks per class stream under
// attendance:<school>:<class>:<stream>.
type AttendanceLedger struct {
	kv  storage.KV
	now func() time.Time
}

func NewAttendanceLedger(kv storage.KV) *AttendanceLedger {
	return &AttendanceLedger{kv: kv, now: time.Now}
}

func (l *AttendanceLedger) records(kv storage.KV, schoolCode, classID, streamID string) *storage.EntityStore[models.AttendanceRecord, *models.AttendanceRecord] {
	return storage.NewEntityStore[models.AttendanceRecord](kv, tenant.SchoolKey("attendance", schoolCode, classID, streamID))
}

func checkDay(classID, date string) error {
	if strings.TrimSpace(classID) == "" {
		return ErrInvalidClass
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return ErrInvalidDate
	}
	return nil
}

// ForDay returns the marks recorded for one class stream on date.
func (l *AttendanceLedger) ForDay(ctx context.Context, schoolCode, classID, streamID, date string) ([]models.AttendanceRecord, error) {
	if err := checkDay(classID, date); err != nil {
		return nil, err
	}
	return l.records(l.kv, schoolCode, classID, streamID).FindBy(ctx, func(r models.AttendanceRecord) bool {
		return r.Date == date
	})
}

// dedupe keeps the last mark per student, ordered by first appearance.
func dedupe(marks []Mark) ([]Mark, error) {
	index := make(map[string]int, len(marks))
	out := make([]Mark, 0, len(marks))
	for _, m := range marks {
		m.StudentID = strings.TrimSpace(m.StudentID)
		if m.StudentID == "" || !m.Status.Valid() {
			return nil, ErrInvalidMark
		}
		if i, ok := index[m.StudentID]; ok {
			out[i] = m
			continue
		}
		index[m.StudentID] = len(out)
		out = append(out, m)
	}
	return out, nil
}

// Save replaces the marks of one class stream for date. Every mark must name
// an active student enrolled in that class stream. The roster check, the
// purge and the inserts commit together, so saving the same marks twice
// leaves exactly one record per student.
func (l *AttendanceLedger) Save(ctx context.Context, schoolCode, classID, streamID, date string, marks []Mark, markedBy string) ([]models.AttendanceRecord, error) {
	if err := checkDay(classID, date); err != nil {
		return nil, err
	}
	unique, err := dedupe(marks)
	if err != nil {
		return nil, err
	}

	recordedAt := l.now().UTC()
	records := make([]models.AttendanceRecord, len(unique))
	for i, m := range unique {
		records[i] = models.AttendanceRecord{
			SchoolCode: tenant.Canonical(schoolCode),
			ClassID:    classID,
			StreamID:   streamID,
			StudentID:  m.StudentID,
			Date:       date,
			Status:     m.Status,
			MarkedBy:   markedBy,
			RecordedAt: recordedAt,
		}
	}

	var saved []models.AttendanceRecord
	err = atomically(ctx, l.kv, func(kv storage.KV) error {
		if err := checkEnrolled(ctx, kv, schoolCode, classID, streamID, unique); err != nil {
			return err
		}
		store := l.records(kv, schoolCode, classID, streamID)
		if _, err := store.RemoveWhere(ctx, func(r models.AttendanceRecord) bool { return r.Date == date }); err != nil {
			return err
		}
		var err error
		saved, err = store.AddMany(ctx, records)
		return err
	})
	return saved, err
}

func checkEnrolled(ctx context.Context, kv storage.KV, schoolCode, classID, streamID string, marks []Mark) error {
	classID, streamID = strings.TrimSpace(classID), strings.TrimSpace(streamID)
	enrolled, err := studentsAt(kv, schoolCode).FindBy(ctx, func(s models.Student) bool {
		return s.Status == models.StudentActive && s.ClassID == classID && s.StreamID == streamID
	})
	if err != nil {
		return err
	}
	ids := make(map[string]bool, len(enrolled))
	for _, s := range enrolled {
		ids[s.ID] = true
	}
	for _, m := range marks {
		if !ids[m.StudentID] {
			return fmt.Errorf("%w: %s", ErrUnknownStudent, m.StudentID)
		}
	}
	return nil
}

// Summary counts the marks of one class stream on date by status.
func (l *AttendanceLedger) Summary(ctx context.Context, schoolCode, classID, streamID, date string) (AttendanceSummary, error) {
	records, err := l.ForDay(ctx, schoolCode, classID, streamID, date)
	if err != nil {
		return AttendanceSummary{}, err
	}
	sum := AttendanceSummary{Date: date, Total: len(records)}
	for _, r := range records {
		switch r.Status {
		case models.AttendancePresent:
			sum.Present++
		case models.AttendanceAbsent:
			sum.Absent++
		case models.AttendanceLate:
			sum.Late++
		case models.AttendanceExcused:
			sum.Excused++
		}
	}
	return sum, nil
}
