package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/RoyceAzure/lab/pos/internal/domain/model"
)

func testTables() []model.Table {
	return []model.Table{
		{TableID: 1, Name: "Mesa 1", Occupied: false},
		{TableID: 2, Name: "Mesa 2", Occupied: true, RunningTotal: decimal.RequireFromString("120.00")},
	}
}

func newTestView(fg *fakeGateway) *TableViewService {
	return NewTableViewService(fg, zerolog.Nop())
}

func TestRefreshReplacesSnapshot(t *testing.T) {
	fg := newFakeGateway()
	fg.listTablesFn = func(ctx context.Context, _ *int) ([]model.Table, error) {
		return testTables(), nil
	}
	view := newTestView(fg)

	require.NoError(t, view.Refresh(context.Background()))
	require.Len(t, view.Snapshot(), 2)

	table, ok := view.Lookup(2)
	require.True(t, ok)
	require.True(t, table.Occupied)
}

func TestRefreshFailureKeepsPreviousSnapshot(t *testing.T) {
	fg := newFakeGateway()
	fg.listTablesFn = func(ctx context.Context, _ *int) ([]model.Table, error) {
		return testTables(), nil
	}
	view := newTestView(fg)
	require.NoError(t, view.Refresh(context.Background()))

	fg.listTablesFn = func(ctx context.Context, _ *int) ([]model.Table, error) {
		return nil, errors.New("remote unreachable")
	}
	err := view.Refresh(context.Background())
	require.Error(t, err)
	// 失敗不得清空畫面
	require.Len(t, view.Snapshot(), 2)
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	fg := newFakeGateway()
	firstEntered := make(chan struct{})
	releaseFirst := make(chan struct{})
	var callSeq int32

	tablesA := []model.Table{{TableID: 1, Name: "A"}}
	tablesB := []model.Table{{TableID: 2, Name: "B"}}

	fg.listTablesFn = func(ctx context.Context, _ *int) ([]model.Table, error) {
		if atomic.AddInt32(&callSeq, 1) == 1 {
			close(firstEntered)
			<-releaseFirst
			return tablesA, nil
		}
		return tablesB, nil
	}
	view := newTestView(fg)

	// 先發出的請求卡住，後發出的先完成
	firstDone := make(chan error, 1)
	go func() {
		firstDone <- view.Refresh(context.Background())
	}()
	<-firstEntered

	require.NoError(t, view.Refresh(context.Background()))

	close(releaseFirst)
	require.NoError(t, <-firstDone)

	// 最終畫面必須是後發出請求的結果，過期回應被丟棄
	snapshot := view.Snapshot()
	require.Len(t, snapshot, 1)
	require.Equal(t, 2, snapshot[0].TableID)
}

func TestRefreshUsesClassificationFilter(t *testing.T) {
	fg := newFakeGateway()
	var gotFilter *int
	fg.listTablesFn = func(ctx context.Context, classificationID *int) ([]model.Table, error) {
		gotFilter = classificationID
		return nil, nil
	}
	view := newTestView(fg)

	terrace := 3
	view.SetClassificationFilter(&terrace)
	require.NoError(t, view.Refresh(context.Background()))
	require.NotNil(t, gotFilter)
	require.Equal(t, 3, *gotFilter)
}

func TestRemovePendingOrderNoopWhenUnoccupied(t *testing.T) {
	fg := newFakeGateway()
	fg.listTablesFn = func(ctx context.Context, _ *int) ([]model.Table, error) {
		return testTables(), nil
	}
	view := newTestView(fg)
	require.NoError(t, view.Refresh(context.Background()))

	removed, err := view.RemovePendingOrder(context.Background(), 1)
	require.NoError(t, err)
	require.False(t, removed)
	require.Equal(t, 0, fg.callCount("DeletePendingOrder"))
}

func TestRemovePendingOrderDeletesAndRefreshes(t *testing.T) {
	fg := newFakeGateway()
	fg.listTablesFn = func(ctx context.Context, _ *int) ([]model.Table, error) {
		return testTables(), nil
	}
	view := newTestView(fg)
	require.NoError(t, view.Refresh(context.Background()))

	removed, err := view.RemovePendingOrder(context.Background(), 2)
	require.NoError(t, err)
	require.True(t, removed)
	require.Equal(t, 1, fg.callCount("DeletePendingOrder"))
	require.Equal(t, 2, fg.callCount("ListTables"))
}

func TestRemovePendingOrderUnknownTable(t *testing.T) {
	fg := newFakeGateway()
	view := newTestView(fg)

	_, err := view.RemovePendingOrder(context.Background(), 42)
	require.ErrorIs(t, err, ErrTableNotFound)
}

func TestAssignCustomerTriggersRefresh(t *testing.T) {
	fg := newFakeGateway()
	var gotTable, gotCustomer int
	var gotNote string
	fg.assignCustomerFn = func(ctx context.Context, tableID, customerID int, note string) error {
		gotTable, gotCustomer, gotNote = tableID, customerID, note
		return nil
	}
	view := newTestView(fg)

	require.NoError(t, view.AssignCustomer(context.Background(), 2, 9, "cumpleaños"))
	require.Equal(t, 2, gotTable)
	require.Equal(t, 9, gotCustomer)
	require.Equal(t, "cumpleaños", gotNote)
	require.Equal(t, 1, fg.callCount("ListTables"))
}

func TestOnChangeNotifiedAfterReplace(t *testing.T) {
	fg := newFakeGateway()
	fg.listTablesFn = func(ctx context.Context, _ *int) ([]model.Table, error) {
		return testTables(), nil
	}
	view := newTestView(fg)

	var notified []model.Table
	view.SetOnChange(func(tables []model.Table) {
		notified = tables
	})

	require.NoError(t, view.Refresh(context.Background()))
	require.Len(t, notified, 2)
}
