package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/inqira/inqira/internal/questionnaire/domain"
	"github.com/inqira/inqira/internal/questionnaire/repository"
)

func newTestService(t *testing.T) (domain.Service, *snowflake.Node) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	dbConn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(&domain.Questionnaire{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return NewService(repository.NewRepository(dbConn), node, zap.NewNop()), node
}

func TestCreateAndGet(t *testing.T) {
	svc, node := newTestService(t)
	ctx := context.Background()
	userID := node.Generate()
	projectID := node.Generate()

	created, err := svc.Create(ctx, userID, projectID, domain.CreateRequest{Title: "  Survey  "})
	require.NoError(t, err)
	require.Equal(t, "Survey", created.Title)
	require.Equal(t, projectID, created.ProjectID)

	got, err := svc.Get(ctx, projectID, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)
}

func TestCreateRejectsBlankTitle(t *testing.T) {
	svc, node := newTestService(t)

	_, err := svc.Create(context.Background(), node.Generate(), node.Generate(), domain.CreateRequest{Title: " "})
	require.ErrorIs(t, err, domain.ErrInvalidTitle)
}

func TestGetScopedToProject(t *testing.T) {
	svc, node := newTestService(t)
	ctx := context.Background()
	userID := node.Generate()
	projectID := node.Generate()
	otherProjectID := node.Generate()

	created, err := svc.Create(ctx, userID, projectID, domain.CreateRequest{Title: "Survey"})
	require.NoError(t, err)

	// The row is invisible through another project's scope.
	_, err = svc.Get(ctx, otherProjectID, created.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateTitle(t *testing.T) {
	svc, node := newTestService(t)
	ctx := context.Background()
	userID := node.Generate()
	projectID := node.Generate()

	created, err := svc.Create(ctx, userID, projectID, domain.CreateRequest{Title: "Draft"})
	require.NoError(t, err)

	title := "Final"
	updated, err := svc.Update(ctx, userID, projectID, created.ID, domain.UpdateRequest{ID: created.ID, Title: &title})
	require.NoError(t, err)
	require.Equal(t, "Final", updated.Title)
}

func TestUpdateMissing(t *testing.T) {
	svc, node := newTestService(t)
	title := "Anything"

	_, err := svc.Update(context.Background(), node.Generate(), node.Generate(), node.Generate(), domain.UpdateRequest{Title: &title})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteReturnsRow(t *testing.T) {
	svc, node := newTestService(t)
	ctx := context.Background()
	userID := node.Generate()
	projectID := node.Generate()

	created, err := svc.Create(ctx, userID, projectID, domain.CreateRequest{Title: "Doomed"})
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, projectID, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, deleted.ID)

	_, err = svc.Get(ctx, projectID, created.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListSearchAndPagination(t *testing.T) {
	svc, node := newTestService(t)
	ctx := context.Background()
	userID := node.Generate()
	projectID := node.Generate()

	for _, title := range []string{"Customer Feedback", "Customer Onboarding", "Exit Interview"} {
		_, err := svc.Create(ctx, userID, projectID, domain.CreateRequest{Title: title})
		require.NoError(t, err)
	}

	items, count, err := svc.List(ctx, projectID, domain.ListFilter{Search: "customer", Limit: 10})
	require.NoError(t, err)
	require.EqualValues(t, 2, count)
	require.Len(t, items, 2)

	page, count, err := svc.List(ctx, projectID, domain.ListFilter{Limit: 2})
	require.NoError(t, err)
	require.EqualValues(t, 3, count)
	require.Len(t, page, 2)
}
