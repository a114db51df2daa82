//go:build integration

package repository_test

import (
	"context"
	"testing"

	"eta-worker-service/internal/domain/entity"
	domainRepo "eta-worker-service/internal/domain/repository"
	"eta-worker-service/internal/infrastructure/persistence"
	"eta-worker-service/internal/interface/repository"
	"eta-worker-service/pkg/logger"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoTripRepositoryIntegrationTestSuite runs the trip repository against a real MongoDB
type MongoTripRepositoryIntegrationTestSuite struct {
	suite.Suite
	container *mongodb.MongoDBContainer
	client    *mongo.Client
	db        *mongo.Database
	repo      domainRepo.TripRepository
}

func (suite *MongoTripRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := mongodb.Run(ctx, "mongo:7")
	suite.Require().NoError(err)
	suite.container = container

	uri, err := container.ConnectionString(ctx)
	suite.Require().NoError(err)

	client, err := persistence.NewMongoClient(ctx, uri, "", "")
	suite.Require().NoError(err)
	suite.client = client
	suite.db = persistence.GetDatabase(client, "dispatch_test")
}

func (suite *MongoTripRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Collection("schedules").Drop(context.Background()))
	suite.repo = repository.NewMongoTripRepository(suite.db, "schedules", logger.NewNopLogger())
}

func (suite *MongoTripRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.client != nil {
		suite.Require().NoError(suite.client.Disconnect(context.Background()))
	}
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *MongoTripRepositoryIntegrationTestSuite) insert(docs ...interface{}) {
	_, err := suite.db.Collection("schedules").InsertMany(context.Background(), docs)
	suite.Require().NoError(err)
}

func (suite *MongoTripRepositoryIntegrationTestSuite) TestReadAll_DecodesAndSkipsBadDocuments() {
	ctx := context.Background()
	oid := primitive.NewObjectID()

	suite.insert(
		bson.M{"_id": "trip-1", "tripType": "Arrival", "status": "Pending", "date": "2026-03-10", "time": "2:30PM", "pickup": "NAIA (MNL)", "flightNumber": "PR102", "driver": "Juan"},
		bson.M{"_id": oid, "tripType": "Departure", "status": "Completed", "date": "2026-03-10", "time": "9:00AM", "pickup": "Makati", "flightNumber": "5J811"},
		bson.M{"_id": "broken", "tripType": "Arrival", "time": bson.A{1, 2}},
	)

	trips, err := suite.repo.ReadAll(ctx)
	suite.Require().NoError(err)
	suite.Require().Len(trips, 2)

	suite.Equal("PR102", trips["trip-1"].FlightNumber)
	suite.Nil(trips["trip-1"].ETA)
	suite.Equal(entity.TripTypeDeparture, trips[oid.Hex()].TripType)
}

func (suite *MongoTripRepositoryIntegrationTestSuite) TestPatchETA_OnlyTouchesETA() {
	ctx := context.Background()
	oid := primitive.NewObjectID()

	suite.insert(
		bson.M{"_id": "trip-1", "tripType": "Arrival", "status": "Pending", "date": "2026-03-10", "time": "2:30PM", "pickup": "NAIA (MNL)", "flightNumber": "PR102", "driver": "Juan",
			"ETA": bson.M{"est": "2026-03-10 13:00:00", "timestamp": int64(1), "note": "stale"}},
		bson.M{"_id": oid, "tripType": "Arrival", "status": "Pending", "date": "2026-03-10", "time": "3:00PM", "pickup": "Clark (CRK)", "flightNumber": "5J188"},
	)

	eta := entity.ETA{Est: "2026-03-10 13:21:49", Timestamp: 1773118800000}
	suite.Require().NoError(suite.repo.PatchETA(ctx, "trip-1", eta))
	suite.Require().NoError(suite.repo.PatchETA(ctx, oid.Hex(), eta))

	var raw struct {
		Driver string                 `bson:"driver"`
		Time   string                 `bson:"time"`
		ETA    map[string]interface{} `bson:"ETA"`
	}
	suite.Require().NoError(suite.db.Collection("schedules").FindOne(ctx, bson.M{"_id": "trip-1"}).Decode(&raw))
	suite.Equal("Juan", raw.Driver)
	suite.Equal("2:30PM", raw.Time)
	suite.Equal(map[string]interface{}{"est": "2026-03-10 13:21:49", "timestamp": int64(1773118800000)}, raw.ETA)

	trips, err := suite.repo.ReadAll(ctx)
	suite.Require().NoError(err)
	suite.Equal(eta, *trips[oid.Hex()].ETA)
}

func (suite *MongoTripRepositoryIntegrationTestSuite) TestPatchETA_UnknownTrip() {
	err := suite.repo.PatchETA(context.Background(), "missing", entity.ETA{Est: "2026-03-10 13:21:49"})
	suite.ErrorIs(err, entity.ErrTripNotFound)

	count, err := suite.db.Collection("schedules").CountDocuments(context.Background(), bson.M{})
	suite.Require().NoError(err)
	suite.Zero(count)
}

func TestMongoTripRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(MongoTripRepositoryIntegrationTestSuite))
}
