package board_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/flowboard/internal/board"
	"github.com/gosuda/flowboard/internal/domain"
	"github.com/gosuda/flowboard/internal/event"
)

func TestCreateBoard_DefaultLayout(t *testing.T) {
	t.Parallel()
	svc, rec := newService()
	d := seedBoard(t, svc)

	titles := make([]string, 0, len(d.Columns))
	for i, c := range d.Columns {
		assert.Equal(t, i, c.Position)
		titles = append(titles, c.Title)
	}
	assert.Equal(t, []string{"Item", "Status", "Date", "End Date"}, titles)
	assert.Equal(t, domain.ColumnStatus, d.Columns[1].Type)
	assert.Equal(t, []any{"To Do", "In Progress", "Done"}, d.Columns[1].Settings["options"])

	require.Len(t, d.Groups, 1)
	assert.Equal(t, board.DefaultGroupName, d.Groups[0].Name)

	// Layout changes are not announced.
	assert.Equal(t, []event.Name{event.NameWorkspaceCreated, event.NameBoardCreated}, rec.names())
}

func TestGetBoard_Missing(t *testing.T) {
	t.Parallel()
	svc, _ := newService()

	_, err := svc.GetBoard(t.Context(), uuid.New())
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateColumn(t *testing.T) {
	t.Parallel()
	svc, _ := newService()
	d := seedBoard(t, svc)

	c, err := svc.CreateColumn(t.Context(), d.Board.ID, board.ColumnInput{Type: domain.ColumnPerson, Title: " Owner "})
	require.NoError(t, err)
	assert.Equal(t, "Owner", c.Title)
	assert.Equal(t, len(d.Columns), c.Position)
	assert.NotNil(t, c.Settings)

	tests := []struct {
		name    string
		boardID uuid.UUID
		in      board.ColumnInput
		want    error
	}{
		{name: "unknown board", boardID: uuid.New(), in: board.ColumnInput{Type: domain.ColumnText, Title: "x"}, want: domain.ErrNotFound},
		{name: "blank title", boardID: d.Board.ID, in: board.ColumnInput{Type: domain.ColumnText, Title: " "}, want: domain.ErrInvalidInput},
		{name: "unknown type", boardID: d.Board.ID, in: board.ColumnInput{Type: "rating", Title: "Stars"}, want: domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateColumn(t.Context(), tt.boardID, tt.in)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestReorderColumns(t *testing.T) {
	t.Parallel()
	svc, _ := newService()
	d := seedBoard(t, svc)

	reversed := make([]uuid.UUID, 0, len(d.Columns))
	for i := len(d.Columns) - 1; i >= 0; i-- {
		reversed = append(reversed, d.Columns[i].ID)
	}

	columns, err := svc.ReorderColumns(t.Context(), d.Board.ID, reversed)
	require.NoError(t, err)
	got := make([]uuid.UUID, 0, len(columns))
	for _, c := range columns {
		got = append(got, c.ID)
	}
	assert.Equal(t, reversed, got)

	_, err = svc.ReorderColumns(t.Context(), d.Board.ID, []uuid.UUID{reversed[0], reversed[0]})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDeleteColumn_DropsValues(t *testing.T) {
	t.Parallel()
	svc, _ := newService()
	it, d := seedItem(t, svc)
	column := statusColumn(t, d)

	_, err := svc.UpdateColumnValue(t.Context(), it.ID, column, domain.String("Done"), nil)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteColumn(t.Context(), d.Board.ID, column))

	values, err := svc.ListColumnValues(t.Context(), it.ID)
	require.NoError(t, err)
	assert.Empty(t, values)

	err = svc.DeleteColumn(t.Context(), d.Board.ID, column)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGroups(t *testing.T) {
	t.Parallel()
	svc, _ := newService()
	d := seedBoard(t, svc)

	g, err := svc.CreateGroup(t.Context(), d.Board.ID, "Backlog", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, g.Position)

	name, position := "Icebox", 5
	updated, err := svc.UpdateGroup(t.Context(), d.Board.ID, g.ID, board.GroupPatch{Name: &name, Position: &position})
	require.NoError(t, err)
	assert.Equal(t, "Icebox", updated.Name)
	assert.Equal(t, 5, updated.Position)

	blank := ""
	_, err = svc.UpdateGroup(t.Context(), d.Board.ID, g.ID, board.GroupPatch{Name: &blank})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.UpdateGroup(t.Context(), uuid.New(), g.ID, board.GroupPatch{Name: &name})
	require.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, svc.DeleteGroup(t.Context(), d.Board.ID, g.ID))
	err = svc.DeleteGroup(t.Context(), d.Board.ID, g.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteGroup_WithItems(t *testing.T) {
	t.Parallel()
	svc, _ := newService()
	it, d := seedItem(t, svc)

	err := svc.DeleteGroup(t.Context(), d.Board.ID, it.GroupID)
	require.ErrorIs(t, err, domain.ErrConflict)

	require.NoError(t, svc.DeleteItem(t.Context(), it.ID, nil))
	require.NoError(t, svc.DeleteGroup(t.Context(), d.Board.ID, it.GroupID))
}
