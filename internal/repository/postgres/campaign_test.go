package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindByNameCandidatesMatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, campaign_name\s+FROM email_campaigns`).
		WithArgs(pq.Array([]string{"spring sale", "spring_sale"})).
		WillReturnRows(sqlmock.NewRows([]string{"id", "campaign_name"}).
			AddRow("camp-1", "Spring Sale"))

	repo := NewCampaignRepo(db)
	c, err := repo.FindByNameCandidates(context.Background(), []string{"Spring Sale", "Spring_Sale"})
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "camp-1", c.ID)
	assert.Equal(t, "Spring Sale", c.CampaignName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByNameCandidatesNoMatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, campaign_name\s+FROM email_campaigns`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "campaign_name"}))

	repo := NewCampaignRepo(db)
	c, err := repo.FindByNameCandidates(context.Background(), []string{"Unknown File"})
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestFindByNameCandidatesEmptyInput(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCampaignRepo(db)
	c, err := repo.FindByNameCandidates(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, c)
}
