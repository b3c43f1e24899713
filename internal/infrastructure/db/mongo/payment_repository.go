package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/clearcut/entitlement-system/internal/core/domain"
)

const paymentCollection = "payments"

type MongoPaymentRepository struct {
	coll *mongo.Collection
}

func NewPaymentRepository(db *mongo.Database) *MongoPaymentRepository {
	return &MongoPaymentRepository{coll: db.Collection(paymentCollection)}
}

type mongoPayment struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"`
	UserID            string             `bson:"user_id"`
	ExternalPaymentID string             `bson:"external_payment_id"`
	Amount            int64              `bson:"amount"`
	Currency          string             `bson:"currency"`
	Status            string             `bson:"status"`
	CreatedAt         int64              `bson:"created_at"`
}

func (r *MongoPaymentRepository) Create(ctx context.Context, payment *domain.PaymentRecord) (*domain.PaymentRecord, error) {
	doc := mongoPayment{
		UserID:            payment.UserID,
		ExternalPaymentID: payment.ExternalPaymentID,
		Amount:            payment.Amount,
		Currency:          payment.Currency,
		Status:            payment.Status,
		CreatedAt:         payment.CreatedAt.Unix(),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert payment: %w", err)
	}

	created := *payment
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

func (r *MongoPaymentRepository) FindByExternalID(ctx context.Context, externalID string) (*domain.PaymentRecord, error) {
	var mp mongoPayment
	if err := r.coll.FindOne(ctx, bson.M{"external_payment_id": externalID}).Decode(&mp); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("find payment: %w", err)
	}
	return mp.toDomain(), nil
}

func (r *MongoPaymentRepository) Update(ctx context.Context, payment *domain.PaymentRecord) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"external_payment_id": payment.ExternalPaymentID},
		bson.M{"$set": bson.M{
			"amount":   payment.Amount,
			"currency": payment.Currency,
			"status":   payment.Status,
		}},
	)
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrPaymentNotFound
	}
	return nil
}

func (r *MongoPaymentRepository) ListByUser(ctx context.Context, userID string) ([]domain.PaymentRecord, error) {
	cur, err := r.coll.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer cur.Close(ctx)

	var payments []domain.PaymentRecord
	for cur.Next(ctx) {
		var mp mongoPayment
		if err := cur.Decode(&mp); err != nil {
			return nil, fmt.Errorf("decode payment: %w", err)
		}
		payments = append(payments, *mp.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}

func (mp *mongoPayment) toDomain() *domain.PaymentRecord {
	return &domain.PaymentRecord{
		ID:                mp.ID.Hex(),
		UserID:            mp.UserID,
		ExternalPaymentID: mp.ExternalPaymentID,
		Amount:            mp.Amount,
		Currency:          mp.Currency,
		Status:            mp.Status,
		CreatedAt:         time.Unix(mp.CreatedAt, 0).UTC(),
	}
}
