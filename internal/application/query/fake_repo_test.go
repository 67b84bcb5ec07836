package query

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/attestation-hub/attestation-registry/internal/domain/attestation"
	"github.com/attestation-hub/attestation-registry/internal/domain/shared"
)

// fakeRecord - одна "строка" пяти соединённых таблиц в памяти.
type fakeRecord struct {
	resultID   int64
	studentID  int64
	lastName   string
	firstName  string
	groupName  string
	typeName   string
	grade      attestation.Grade
	topic      string
	memberName string
	examDate   time.Time
}

// fakeResultRepo реализует attestation.ResultRepository в памяти,
// повторяя контракт выборок хранилища.
type fakeResultRepo struct {
	records []fakeRecord

	listErr    error
	statsErr   error
	studentErr error
	updateErr  error

	updates []attestation.ResultID
}

func (f *fakeResultRepo) ListForAdmin(_ context.Context, search string) ([]attestation.AdminRow, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}

	needle := strings.ToLower(search)
	matched := make([]fakeRecord, 0)
	for _, rec := range f.records {
		if strings.Contains(strings.ToLower(rec.lastName), needle) ||
			strings.Contains(strings.ToLower(rec.firstName), needle) ||
			strings.Contains(strings.ToLower(rec.groupName), needle) {
			matched = append(matched, rec)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].groupName != matched[j].groupName {
			return matched[i].groupName < matched[j].groupName
		}
		return matched[i].lastName < matched[j].lastName
	})

	rows := make([]attestation.AdminRow, len(matched))
	for i, rec := range matched {
		rows[i] = attestation.AdminRow{
			ResultID:    attestation.ResultID(rec.resultID),
			StudentName: rec.lastName + " " + rec.firstName,
			GroupName:   rec.groupName,
			TypeName:    rec.typeName,
			Grade:       rec.grade,
			MemberName:  rec.memberName,
			ExamDate:    rec.examDate,
		}
	}
	return rows, nil
}

func (f *fakeResultRepo) GroupStatistics(_ context.Context) ([]attestation.GroupStat, error) {
	if f.statsErr != nil {
		return nil, f.statsErr
	}

	type agg struct {
		students map[int64]struct{}
		sum      int
		count    int
	}
	groups := make(map[string]*agg)
	for _, rec := range f.records {
		a, ok := groups[rec.groupName]
		if !ok {
			a = &agg{students: make(map[int64]struct{})}
			groups[rec.groupName] = a
		}
		a.students[rec.studentID] = struct{}{}
		a.sum += int(rec.grade)
		a.count++
	}

	stats := make([]attestation.GroupStat, 0, len(groups))
	for name, a := range groups {
		stats = append(stats, attestation.GroupStat{
			GroupName:    name,
			StudentCount: len(a.students),
			AverageGrade: float64(a.sum) / float64(a.count),
		})
	}
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].AverageGrade > stats[j].AverageGrade
	})
	return stats, nil
}

func (f *fakeResultRepo) ResultsByStudent(_ context.Context, studentID int64) ([]attestation.StudentRow, error) {
	if f.studentErr != nil {
		return nil, f.studentErr
	}

	rows := make([]attestation.StudentRow, 0)
	for _, rec := range f.records {
		if rec.studentID != studentID {
			continue
		}
		rows = append(rows, attestation.StudentRow{
			TypeName:   rec.typeName,
			Grade:      rec.grade,
			Topic:      rec.topic,
			MemberName: rec.memberName,
			ExamDate:   rec.examDate,
		})
	}
	return rows, nil
}

func (f *fakeResultRepo) UpdateGrade(_ context.Context, id attestation.ResultID, grade attestation.Grade) error {
	if f.updateErr != nil {
		return f.updateErr
	}

	for i := range f.records {
		if f.records[i].resultID == int64(id) {
			f.records[i].grade = grade
			f.updates = append(f.updates, id)
			return nil
		}
	}
	return shared.ErrResultNotFound
}

// testRecords - небольшой набор, задевающий все ветки фильтра.
func testRecords() []fakeRecord {
	date := time.Date(2025, 6, 18, 0, 0, 0, 0, time.UTC)
	return []fakeRecord{
		{resultID: 1, studentID: 10, lastName: "Иванов", firstName: "Петр",
			groupName: "IT-21", typeName: "Экзамен", grade: 4,
			topic: "Билет 7", memberName: "Кузнецова А.В.", examDate: date},
		{resultID: 2, studentID: 10, lastName: "Иванов", firstName: "Петр",
			groupName: "IT-21", typeName: "Защита", grade: 5,
			topic: "Курсовой проект", memberName: "Орлов Д.С.", examDate: date.AddDate(0, 0, 2)},
		{resultID: 3, studentID: 11, lastName: "Ахметов", firstName: "Серик",
			groupName: "IT-21", typeName: "Экзамен", grade: 3,
			topic: "Билет 2", memberName: "Кузнецова А.В.", examDate: date},
		{resultID: 4, studentID: 12, lastName: "Сидорова", firstName: "Анна",
			groupName: "ЭК-11", typeName: "Экзамен", grade: 2,
			topic: "", memberName: "Орлов Д.С.", examDate: date.AddDate(0, 0, 1)},
	}
}
