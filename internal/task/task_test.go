package task

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/haierkeys/fast-note-share-service/internal/dao"
	"github.com/haierkeys/fast-note-share-service/internal/domain"
	"github.com/haierkeys/fast-note-share-service/pkg/safe_close"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newNoteRepo(t *testing.T) domain.NoteRepository {
	t.Helper()
	db, err := dao.NewDBEngineWithConfig(dao.DatabaseConfig{Type: "sqlite", Path: ":memory:"}, zap.NewNop())
	require.NoError(t, err)
	d := dao.New(db, true, zap.NewNop())
	t.Cleanup(func() { _ = d.Close() })
	return dao.NewNoteRepository(d)
}

func TestNewNoteCleanupTaskDisabled(t *testing.T) {
	for _, retention := range []string{"", "0"} {
		task, err := NewNoteCleanupTask(nil, zap.NewNop(), retention, "* * * * *")
		assert.NoError(t, err)
		assert.Nil(t, task)
	}

	_, err := NewNoteCleanupTask(nil, zap.NewNop(), "soon", "* * * * *")
	assert.Error(t, err)

	_, err = NewNoteCleanupTask(nil, zap.NewNop(), "7d", "every minute")
	assert.Error(t, err)
}

// recordingRepo 记录清理调用的截止时间与删除数量
type recordingRepo struct {
	domain.NoteRepository
	removed []int64
}

func (r *recordingRepo) DeletePhysicalByTime(ctx context.Context, timestamp int64) (int64, error) {
	n, err := r.NoteRepository.DeletePhysicalByTime(ctx, timestamp)
	r.removed = append(r.removed, n)
	return n, err
}

func TestNoteCleanupTaskRemovesExpired(t *testing.T) {
	ctx := context.Background()
	repo := &recordingRepo{NoteRepository: newNoteRepo(t)}

	note := &domain.Note{ID: uuid.NewString(), UID: 1, Title: "T", Language: "en", Sharing: domain.SharingFrom(false, nil)}
	_, err := repo.Create(ctx, note)
	require.NoError(t, err)
	require.NoError(t, repo.SoftDelete(ctx, note.ID, 1))

	task, err := NewNoteCleanupTask(repo, zap.NewNop(), "1h", "*/10 * * * *")
	require.NoError(t, err)
	cleanup := task.(*NoteCleanupTask)

	// 仍在保留期内
	require.NoError(t, cleanup.Run(ctx))

	// 两小时后超过保留期
	cleanup.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	require.NoError(t, cleanup.Run(ctx))

	assert.Equal(t, []int64{0, 1}, repo.removed)
}

// everySchedule 固定间隔执行计划
type everySchedule struct{ d time.Duration }

func (e everySchedule) Next(t time.Time) time.Time { return t.Add(e.d) }

type countingTask struct {
	runs     atomic.Int32
	schedule cron.Schedule
}

func (c *countingTask) Name() string              { return "counting" }
func (c *countingTask) Schedule() cron.Schedule   { return c.schedule }
func (c *countingTask) IsStartupRun() bool        { return true }
func (c *countingTask) Run(context.Context) error { c.runs.Add(1); return nil }

type panicTask struct{ countingTask }

func (p *panicTask) Run(context.Context) error { panic("boom") }

func TestSchedulerStartupRunAndStop(t *testing.T) {
	sc := safe_close.NewSafeClose()
	s := NewScheduler(zap.NewNop(), sc)

	schedule, err := ParseSchedule("0 0 1 1 *")
	require.NoError(t, err)
	counting := &countingTask{schedule: schedule}
	s.AddTask(counting)
	s.AddTask(&panicTask{})
	s.Start()

	assert.Eventually(t, func() bool { return counting.runs.Load() == 1 }, time.Second, 10*time.Millisecond)

	sc.SendCloseSignal(nil)
	assert.NoError(t, sc.WaitClosed())
	assert.Equal(t, int32(1), counting.runs.Load())
}

func TestSchedulerRunsOnSchedule(t *testing.T) {
	sc := safe_close.NewSafeClose()
	s := NewScheduler(zap.NewNop(), sc)

	task := &countingTask{schedule: everySchedule{d: 20 * time.Millisecond}}
	s.AddTask(task)
	s.Start()

	assert.Eventually(t, func() bool { return task.runs.Load() >= 3 }, 2*time.Second, 10*time.Millisecond)

	sc.SendCloseSignal(nil)
	assert.NoError(t, sc.WaitClosed())
}
