package workflow

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Windi-Fikriyansyah/freelance_marketplace_be/internal/models"
	"github.com/Windi-Fikriyansyah/freelance_marketplace_be/internal/services/wallet"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// one shared in-memory db per test, isolated by name
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.FreelancerProfile{},
		&models.FreelancerProject{},
		&models.FreelancerApplication{},
		&models.Project{},
		&models.Bid{},
		&models.Application{},
		&models.Notification{},
		&models.WalletTransaction{},
	))
	return db
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	return NewService(db, wallet.NewService(db)), db
}

func createClient(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	u := models.User{Name: "Client", Email: email, Password: "x", Role: models.RoleClient, IsActive: true}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func createFreelancer(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	u := models.User{Name: "Freelancer " + email, Email: email, Password: "x", Role: models.RoleFreelancer, IsActive: true}
	require.NoError(t, db.Create(&u).Error)
	profile := models.FreelancerProfile{UserID: u.ID, Skills: models.JSONStrings([]string{"go"})}
	require.NoError(t, db.Create(&profile).Error)
	return u
}

func createAvailableProject(t *testing.T, db *gorm.DB, client models.User, budget int64) models.Project {
	t.Helper()
	p := models.Project{
		ClientID:    client.ID,
		ClientName:  client.Name,
		ClientEmail: client.Email,
		Title:       "Build an API",
		Budget:      budget,
		Status:      models.ProjectAvailable,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func TestPlaceBid(t *testing.T) {
	svc, db := newTestService(t)

	client := createClient(t, db, "client@test.dev")
	freelancer := createFreelancer(t, db, "dev@test.dev")
	project := createAvailableProject(t, db, client, 1000)

	app, err := svc.PlaceBid(BidInput{
		ProjectID:     project.ID,
		FreelancerID:  freelancer.ID,
		Proposal:      "I can do this",
		BidAmount:     800,
		EstimatedDays: 7,
	})
	require.NoError(t, err)

	assert.Equal(t, models.ApplicationPending, app.Status)
	assert.Equal(t, client.Name, app.ClientName)
	assert.Equal(t, freelancer.Email, app.FreelancerEmail)
	assert.Equal(t, project.Title, app.Title)
	assert.Equal(t, int64(800), app.BidAmount)

	var bids []models.Bid
	require.NoError(t, db.Where("project_id = ?", project.ID).Find(&bids).Error)
	require.Len(t, bids, 1)
	assert.Equal(t, int64(800), bids[0].Amount)

	var link models.FreelancerApplication
	assert.NoError(t, db.First(&link, "freelancer_id = ? AND application_id = ?", freelancer.ID, app.ID).Error)

	var notif models.Notification
	require.NoError(t, db.First(&notif, "user_id = ?", client.ID).Error)
	assert.Equal(t, models.NotificationBid, notif.Type)
}

func TestPlaceBidRejectedWhenNotAvailable(t *testing.T) {
	svc, db := newTestService(t)

	client := createClient(t, db, "client@test.dev")
	freelancer := createFreelancer(t, db, "dev@test.dev")
	project := createAvailableProject(t, db, client, 1000)
	require.NoError(t, db.Model(&project).Update("status", models.ProjectAssigned).Error)

	_, err := svc.PlaceBid(BidInput{ProjectID: project.ID, FreelancerID: freelancer.ID, BidAmount: 500})
	assert.ErrorIs(t, err, ErrNotAvailable)
}

func TestApproveApplicationRejectsCompetitors(t *testing.T) {
	svc, db := newTestService(t)

	client := createClient(t, db, "client@test.dev")
	project := createAvailableProject(t, db, client, 1000)

	f1 := createFreelancer(t, db, "f1@test.dev")
	f2 := createFreelancer(t, db, "f2@test.dev")
	f3 := createFreelancer(t, db, "f3@test.dev")

	a1, err := svc.PlaceBid(BidInput{ProjectID: project.ID, FreelancerID: f1.ID, BidAmount: 900})
	require.NoError(t, err)
	a2, err := svc.PlaceBid(BidInput{ProjectID: project.ID, FreelancerID: f2.ID, BidAmount: 700})
	require.NoError(t, err)
	a3, err := svc.PlaceBid(BidInput{ProjectID: project.ID, FreelancerID: f3.ID, BidAmount: 850})
	require.NoError(t, err)

	require.NoError(t, svc.ApproveApplication(a2.ID))

	var got models.Application
	require.NoError(t, db.First(&got, "id = ?", a2.ID).Error)
	assert.Equal(t, models.ApplicationAccepted, got.Status)

	for _, loserID := range []uuid.UUID{a1.ID, a3.ID} {
		// fresh struct: reusing one would add its primary key to the query
		var loser models.Application
		require.NoError(t, db.First(&loser, "id = ?", loserID).Error)
		assert.Equal(t, models.ApplicationRejected, loser.Status)
	}

	var p models.Project
	require.NoError(t, db.First(&p, "id = ?", project.ID).Error)
	assert.Equal(t, models.ProjectAssigned, p.Status)
	require.NotNil(t, p.FreelancerID)
	assert.Equal(t, f2.ID, *p.FreelancerID)
	// budget becomes the accepted bid
	assert.Equal(t, int64(700), p.Budget)

	var current models.FreelancerProject
	require.NoError(t, db.First(&current, "freelancer_id = ? AND project_id = ? AND type = ?",
		f2.ID, project.ID, models.ProjectListCurrent).Error)

	// winner notified, losers notified
	var count int64
	db.Model(&models.Notification{}).Where("user_id = ? AND type = ?", f2.ID, models.NotificationApproval).Count(&count)
	assert.Equal(t, int64(1), count)
	db.Model(&models.Notification{}).Where("type = ?", models.NotificationRejection).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestApproveApplicationTwice(t *testing.T) {
	svc, db := newTestService(t)

	client := createClient(t, db, "client@test.dev")
	freelancer := createFreelancer(t, db, "dev@test.dev")
	project := createAvailableProject(t, db, client, 1000)

	app, err := svc.PlaceBid(BidInput{ProjectID: project.ID, FreelancerID: freelancer.ID, BidAmount: 500})
	require.NoError(t, err)

	require.NoError(t, svc.ApproveApplication(app.ID))
	assert.ErrorIs(t, svc.ApproveApplication(app.ID), ErrAlreadyDecided)
}

func TestRejectApplication(t *testing.T) {
	svc, db := newTestService(t)

	client := createClient(t, db, "client@test.dev")
	freelancer := createFreelancer(t, db, "dev@test.dev")
	project := createAvailableProject(t, db, client, 1000)

	app, err := svc.PlaceBid(BidInput{ProjectID: project.ID, FreelancerID: freelancer.ID, BidAmount: 500})
	require.NoError(t, err)

	require.NoError(t, svc.RejectApplication(app.ID))

	var got models.Application
	require.NoError(t, db.First(&got, "id = ?", app.ID).Error)
	assert.Equal(t, models.ApplicationRejected, got.Status)

	// project untouched
	var p models.Project
	require.NoError(t, db.First(&p, "id = ?", project.ID).Error)
	assert.Equal(t, models.ProjectAvailable, p.Status)
	assert.Nil(t, p.FreelancerID)

	assert.ErrorIs(t, svc.RejectApplication(app.ID), ErrAlreadyDecided)
}

func assignProject(t *testing.T, svc *Service, db *gorm.DB) (models.Project, models.User) {
	t.Helper()
	client := createClient(t, db, "client@test.dev")
	freelancer := createFreelancer(t, db, "dev@test.dev")
	project := createAvailableProject(t, db, client, 1000)

	app, err := svc.PlaceBid(BidInput{ProjectID: project.ID, FreelancerID: freelancer.ID, BidAmount: 600})
	require.NoError(t, err)
	require.NoError(t, svc.ApproveApplication(app.ID))

	require.NoError(t, db.First(&project, "id = ?", project.ID).Error)
	return project, freelancer
}

func TestSubmitWork(t *testing.T) {
	svc, db := newTestService(t)
	project, _ := assignProject(t, svc, db)

	require.NoError(t, svc.SubmitWork(project.ID, "https://repo", "https://docs", "done"))

	var p models.Project
	require.NoError(t, db.First(&p, "id = ?", project.ID).Error)
	assert.True(t, p.Submission)
	assert.False(t, p.SubmissionAccepted)
	assert.Equal(t, "https://repo", p.ProjectLink)
	assert.Equal(t, models.ProjectAssigned, p.Status)
}

func TestSubmitWorkRequiresAssignment(t *testing.T) {
	svc, db := newTestService(t)
	client := createClient(t, db, "client@test.dev")
	project := createAvailableProject(t, db, client, 1000)

	assert.ErrorIs(t, svc.SubmitWork(project.ID, "", "", ""), ErrNotAssigned)
}

func TestApproveSubmission(t *testing.T) {
	svc, db := newTestService(t)
	project, freelancer := assignProject(t, svc, db)
	require.NoError(t, svc.SubmitWork(project.ID, "https://repo", "", "done"))

	require.NoError(t, svc.ApproveSubmission(project.ID))

	var p models.Project
	require.NoError(t, db.First(&p, "id = ?", project.ID).Error)
	assert.Equal(t, models.ProjectCompleted, p.Status)
	assert.True(t, p.SubmissionAccepted)

	// moved from current to completed
	var count int64
	db.Model(&models.FreelancerProject{}).
		Where("freelancer_id = ? AND project_id = ? AND type = ?", freelancer.ID, project.ID, models.ProjectListCurrent).
		Count(&count)
	assert.Equal(t, int64(0), count)
	db.Model(&models.FreelancerProject{}).
		Where("freelancer_id = ? AND project_id = ? AND type = ?", freelancer.ID, project.ID, models.ProjectListCompleted).
		Count(&count)
	assert.Equal(t, int64(1), count)

	// budget credited, ledger written
	var profile models.FreelancerProfile
	require.NoError(t, db.First(&profile, "user_id = ?", freelancer.ID).Error)
	assert.Equal(t, int64(600), profile.Balance)

	var trx models.WalletTransaction
	require.NoError(t, db.First(&trx, "user_id = ?", freelancer.ID).Error)
	assert.Equal(t, int64(600), trx.Amount)
	assert.Equal(t, models.WalletTrxCredit, trx.Type)
	require.NotNil(t, trx.ReferenceID)
	assert.Equal(t, project.ID, *trx.ReferenceID)
}

func TestApproveSubmissionRequiresDelivery(t *testing.T) {
	svc, db := newTestService(t)
	project, _ := assignProject(t, svc, db)

	assert.ErrorIs(t, svc.ApproveSubmission(project.ID), ErrNoSubmission)
}

func TestRejectSubmission(t *testing.T) {
	svc, db := newTestService(t)
	project, freelancer := assignProject(t, svc, db)
	require.NoError(t, svc.SubmitWork(project.ID, "https://repo", "https://docs", "done"))

	require.NoError(t, svc.RejectSubmission(project.ID))

	var p models.Project
	require.NoError(t, db.First(&p, "id = ?", project.ID).Error)
	assert.Equal(t, models.ProjectAssigned, p.Status)
	assert.False(t, p.Submission)
	assert.Empty(t, p.ProjectLink)
	assert.Empty(t, p.ManualLink)
	assert.Empty(t, p.SubmissionDescription)

	// no payout on reject
	var profile models.FreelancerProfile
	require.NoError(t, db.First(&profile, "user_id = ?", freelancer.ID).Error)
	assert.Equal(t, int64(0), profile.Balance)

	// freelancer can resubmit
	assert.NoError(t, svc.SubmitWork(project.ID, "https://repo-v2", "", "fixed"))
}
