package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/enersim/energy-simulator/internal/core/domain"
)

const simulationsCollection = "simulations"

// SimulationRepository persists calculator results in MongoDB.
type SimulationRepository struct {
	coll *mongo.Collection
}

func NewSimulationRepository(db *mongo.Database) *SimulationRepository {
	return &SimulationRepository{coll: db.Collection(simulationsCollection)}
}

type mongoSimulation struct {
	ID             primitive.ObjectID    `bson:"_id,omitempty"`
	Owner          string                `bson:"owner"`
	Technology     string                `bson:"technology"`
	Site           domain.SiteParameters `bson:"site"`
	AnnualEnergyKW float64               `bson:"annual_energy_kwh"`
	AnnualSavings  float64               `bson:"annual_savings"`
	PaybackYears   float64               `bson:"payback_years"`
	CO2OffsetTons  float64               `bson:"co2_offset_tons"`
	Score          float64               `bson:"score"`
	CreatedAt      int64                 `bson:"created_at"`
}

func (r *SimulationRepository) Insert(ctx context.Context, sim *domain.Simulation) (*domain.Simulation, error) {
	doc := mongoSimulation{
		Owner:          sim.Owner,
		Technology:     sim.Technology,
		Site:           sim.Site,
		AnnualEnergyKW: sim.AnnualEnergyKW,
		AnnualSavings:  sim.AnnualSavings,
		PaybackYears:   sim.PaybackYears,
		CO2OffsetTons:  sim.CO2OffsetTons,
		Score:          sim.Score,
		CreatedAt:      sim.CreatedAt.Unix(),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert simulation: %w", err)
	}

	stored := *sim
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		stored.ID = oid.Hex()
	}
	return &stored, nil
}

func (r *SimulationRepository) FindByID(ctx context.Context, id string) (*domain.Simulation, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrSimulationNotFound
	}

	var ms mongoSimulation
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&ms); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrSimulationNotFound
		}
		return nil, fmt.Errorf("find simulation: %w", err)
	}
	return ms.toDomain(), nil
}

func (r *SimulationRepository) FindByOwner(ctx context.Context, owner string) ([]*domain.Simulation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"owner": owner}, opts)
	if err != nil {
		return nil, fmt.Errorf("list simulations: %w", err)
	}
	defer cursor.Close(ctx)

	var sims []*domain.Simulation
	for cursor.Next(ctx) {
		var ms mongoSimulation
		if err := cursor.Decode(&ms); err != nil {
			return nil, fmt.Errorf("decode simulation: %w", err)
		}
		sims = append(sims, ms.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("list simulations: %w", err)
	}
	return sims, nil
}

func (r *SimulationRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrSimulationNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete simulation: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrSimulationNotFound
	}
	return nil
}

func (ms *mongoSimulation) toDomain() *domain.Simulation {
	return &domain.Simulation{
		ID:             ms.ID.Hex(),
		Owner:          ms.Owner,
		Technology:     ms.Technology,
		Site:           ms.Site,
		AnnualEnergyKW: ms.AnnualEnergyKW,
		AnnualSavings:  ms.AnnualSavings,
		PaybackYears:   ms.PaybackYears,
		CO2OffsetTons:  ms.CO2OffsetTons,
		Score:          ms.Score,
		CreatedAt:      unixToTime(ms.CreatedAt),
	}
}
