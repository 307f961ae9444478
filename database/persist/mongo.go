package persist

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type opKind int

const (
	opSave opKind = iota
	opDelete
)

type writeOp struct {
	kind       opKind
	collection string
	id         string
	entity     any
}

// MongoPersister writes entities to MongoDB behind a single writer goroutine,
// which preserves per-entity write order. The queue is bounded; enqueueing
// blocks briefly if the writer falls behind rather than dropping writes.
type MongoPersister struct {
	db     *mongo.Database
	logger *zap.Logger
	ops    chan writeOp
	done   chan struct{}
}

// NewMongoPersister starts the writer goroutine.
func NewMongoPersister(client *mongo.Client, dbName string, logger *zap.Logger) *MongoPersister {
	p := &MongoPersister{
		db:     client.Database(dbName),
		logger: logger,
		ops:    make(chan writeOp, 1024),
		done:   make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *MongoPersister) Save(collection, id string, entity any) {
	p.ops <- writeOp{kind: opSave, collection: collection, id: id, entity: entity}
}

func (p *MongoPersister) Delete(collection, id string) {
	p.ops <- writeOp{kind: opDelete, collection: collection, id: id}
}

// Close flushes pending writes and stops the writer.
func (p *MongoPersister) Close() {
	close(p.ops)
	<-p.done
}

func (p *MongoPersister) run() {
	defer close(p.done)
	for op := range p.ops {
		p.apply(op)
	}
}

func (p *MongoPersister) apply(op writeOp) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	coll := p.db.Collection(op.collection)
	var err error
	switch op.kind {
	case opSave:
		opts := options.Replace().SetUpsert(true)
		_, err = coll.ReplaceOne(ctx, bson.M{"id": op.id}, op.entity, opts)
	case opDelete:
		_, err = coll.DeleteOne(ctx, bson.M{"id": op.id})
	}
	if err != nil {
		// Persistence is at-least-once and never blocks the caller; failures
		// are logged for operator attention only.
		p.logger.Error("persistence write failed",
			zap.String("collection", op.collection),
			zap.String("id", op.id),
			zap.Error(err))
	}
}
