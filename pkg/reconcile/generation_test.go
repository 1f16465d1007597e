package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/chris/imagegen-credits/pkg/models"
	notifymocks "github.com/chris/imagegen-credits/pkg/notify/mocks"
	"github.com/chris/imagegen-credits/pkg/storage"
	"github.com/chris/imagegen-credits/pkg/storage/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func pendingTask() *models.GenerationTask {
	return &models.GenerationTask{
		RequestID: "req-123",
		UserID:    42,
		ChatID:    42,
		Status:    models.TaskPending,
		Cost:      2,
	}
}

func TestGenerationHandle(t *testing.T) {
	resultURL := "https://cdn.example.com/result.png"
	successCallback := &models.GenerationCallback{
		RequestID: "req-123",
		Status:    models.GenerationStatusSuccess,
		Result:    json.RawMessage(`["` + resultURL + `"]`),
	}

	t.Run("Success Completes And Notifies", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		mockNotifier := new(notifymocks.Notifier)
		r := NewGenerationReconciler(mockStore, mockNotifier)

		task := pendingTask()
		completed := *task
		completed.Status = models.TaskSuccess
		completed.ResultURL = resultURL

		mockStore.On("GetTaskByRequestID", mock.Anything, "req-123").Return(task, nil)
		mockStore.On("CompleteTask", mock.Anything, "req-123", resultURL).Once().Return(&completed, nil)
		mockNotifier.On("SendResult", mock.Anything, int64(42), resultURL).Once().Return(nil)

		ack, err := r.Handle(context.Background(), successCallback)

		assert.NoError(t, err)
		assert.True(t, ack.OK)
		assert.Equal(t, "req-123", ack.RequestID)
		mockStore.AssertNotCalled(t, "FailTask", mock.Anything, mock.Anything)
		mockStore.AssertExpectations(t)
		mockNotifier.AssertExpectations(t)
	})

	t.Run("Failure Refunds", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		mockNotifier := new(notifymocks.Notifier)
		r := NewGenerationReconciler(mockStore, mockNotifier)

		task := pendingTask()
		failed := *task
		failed.Status = models.TaskFailed

		mockStore.On("GetTaskByRequestID", mock.Anything, "req-123").Return(task, nil)
		mockStore.On("FailTask", mock.Anything, task).Once().Return(&failed, nil)

		ack, err := r.Handle(context.Background(), &models.GenerationCallback{RequestID: "req-123", Status: "failed"})

		assert.NoError(t, err)
		assert.False(t, ack.OK)
		assert.Equal(t, "failed", ack.Status)
		mockStore.AssertNotCalled(t, "CompleteTask", mock.Anything, mock.Anything, mock.Anything)
		mockStore.AssertExpectations(t)
	})

	t.Run("Unrecognized Status Refunds", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		mockNotifier := new(notifymocks.Notifier)
		r := NewGenerationReconciler(mockStore, mockNotifier)

		task := pendingTask()
		failed := *task
		failed.Status = models.TaskFailed

		mockStore.On("GetTaskByRequestID", mock.Anything, "req-123").Return(task, nil)
		mockStore.On("FailTask", mock.Anything, task).Once().Return(&failed, nil)

		ack, err := r.Handle(context.Background(), &models.GenerationCallback{RequestID: "req-123", Status: "throttled"})

		assert.NoError(t, err)
		assert.False(t, ack.OK)
		mockStore.AssertExpectations(t)
	})

	t.Run("Terminal Task Is Ignored", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		mockNotifier := new(notifymocks.Notifier)
		r := NewGenerationReconciler(mockStore, mockNotifier)

		done := pendingTask()
		done.Status = models.TaskSuccess
		mockStore.On("GetTaskByRequestID", mock.Anything, "req-123").Return(done, nil)

		ack, err := r.Handle(context.Background(), successCallback)

		assert.NoError(t, err)
		assert.True(t, ack.OK)
		mockStore.AssertNotCalled(t, "CompleteTask", mock.Anything, mock.Anything, mock.Anything)
		mockStore.AssertNotCalled(t, "FailTask", mock.Anything, mock.Anything)
		mockNotifier.AssertNotCalled(t, "SendResult", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Lost Transition Race Is Acknowledged", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		mockNotifier := new(notifymocks.Notifier)
		r := NewGenerationReconciler(mockStore, mockNotifier)

		task := pendingTask()
		done := *task
		done.Status = models.TaskSuccess

		mockStore.On("GetTaskByRequestID", mock.Anything, "req-123").Return(task, nil)
		mockStore.On("CompleteTask", mock.Anything, "req-123", resultURL).Return(&done, storage.ErrTaskAlreadyTerminal)

		ack, err := r.Handle(context.Background(), successCallback)

		assert.NoError(t, err)
		assert.True(t, ack.OK)
		mockNotifier.AssertNotCalled(t, "SendResult", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Unknown Request", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		mockNotifier := new(notifymocks.Notifier)
		r := NewGenerationReconciler(mockStore, mockNotifier)

		mockStore.On("GetTaskByRequestID", mock.Anything, "req-ghost").Return(nil, storage.ErrTaskNotFound)

		ack, err := r.Handle(context.Background(), &models.GenerationCallback{RequestID: "req-ghost", Status: models.GenerationStatusSuccess})

		assert.NoError(t, err)
		assert.False(t, ack.OK)
		assert.Equal(t, "unknown request_id", ack.Error)
		mockStore.AssertNotCalled(t, "CompleteTask", mock.Anything, mock.Anything, mock.Anything)
		mockStore.AssertNotCalled(t, "FailTask", mock.Anything, mock.Anything)
	})

	t.Run("Missing Result Reference Fails The Task", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		mockNotifier := new(notifymocks.Notifier)
		r := NewGenerationReconciler(mockStore, mockNotifier)

		task := pendingTask()
		failed := *task
		failed.Status = models.TaskFailed

		mockStore.On("GetTaskByRequestID", mock.Anything, "req-123").Return(task, nil)
		mockStore.On("FailTask", mock.Anything, task).Once().Return(&failed, nil)

		ack, err := r.Handle(context.Background(), &models.GenerationCallback{RequestID: "req-123", Status: models.GenerationStatusSuccess})

		assert.NoError(t, err)
		assert.False(t, ack.OK)
		assert.Equal(t, "result reference not found", ack.Error)
		mockStore.AssertNotCalled(t, "CompleteTask", mock.Anything, mock.Anything, mock.Anything)
		mockStore.AssertExpectations(t)
	})

	t.Run("Notifier Failure Does Not Surface", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		mockNotifier := new(notifymocks.Notifier)
		r := NewGenerationReconciler(mockStore, mockNotifier)

		task := pendingTask()
		completed := *task
		completed.Status = models.TaskSuccess

		mockStore.On("GetTaskByRequestID", mock.Anything, "req-123").Return(task, nil)
		mockStore.On("CompleteTask", mock.Anything, "req-123", resultURL).Return(&completed, nil)
		mockNotifier.On("SendResult", mock.Anything, int64(42), resultURL).Return(errors.New("telegram down"))

		ack, err := r.Handle(context.Background(), successCallback)

		assert.NoError(t, err)
		assert.True(t, ack.OK)
	})

	t.Run("Store Failure Is Retriable", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		mockNotifier := new(notifymocks.Notifier)
		r := NewGenerationReconciler(mockStore, mockNotifier)

		mockStore.On("GetTaskByRequestID", mock.Anything, "req-123").Return(nil, errors.New("dynamodb down"))

		_, err := r.Handle(context.Background(), successCallback)

		assert.Error(t, err)
	})
}
