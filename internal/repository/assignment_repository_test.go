package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignmentRepositoryListForScheduling(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "class_id", "teacher_id", "lesson_id", "weekly_hours", "importance"}).
		AddRow("a1", "c1", "t1", "l1", 5, 3).
		AddRow("a2", "c1", "t2", "l2", 0, 1)
	mock.ExpectQuery("SELECT a.id, a.class_id, a.teacher_id, a.lesson_id").
		WillReturnRows(rows)

	list, err := repo.ListForScheduling(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 5, list[0].WeeklyHours)
	assert.Equal(t, 0, list[1].WeeklyHours, "missing curriculum rows surface as zero hours")
	assert.NoError(t, mock.ExpectationsWereMet())
}
