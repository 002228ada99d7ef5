package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Rajangupta9/tasktracker/models"
)

const collectionName = "tasks"

type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	now    func() time.Time
}

func NewMongoStore(client *mongo.Client, dbName string) *MongoStore {
	return &MongoStore{
		client: client,
		coll:   client.Database(dbName).Collection(collectionName),
		now:    time.Now,
	}
}

// EnsureIndexes adds the userId index the list query filters on.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetName("userId_1"),
	})
	if err != nil {
		return fmt.Errorf("create userId index: %w", err)
	}
	return nil
}

func (s *MongoStore) ListByUser(ctx context.Context, userID string) ([]models.Task, error) {
	cursor, err := s.coll.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, fmt.Errorf("find tasks: %w", err)
	}
	defer cursor.Close(ctx)

	tasks := []models.Task{}
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	for i := range tasks {
		if tasks[i].Comments == nil {
			tasks[i].Comments = []models.Comment{}
		}
	}
	return tasks, nil
}

func (s *MongoStore) Get(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	var task models.Task
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&task)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find task: %w", err)
	}
	if task.Comments == nil {
		task.Comments = []models.Comment{}
	}
	return &task, nil
}

func (s *MongoStore) Create(ctx context.Context, task *models.Task) error {
	prepareNew(task, s.now())

	if _, err := s.coll.InsertOne(ctx, task); err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (s *MongoStore) Update(ctx context.Context, id primitive.ObjectID, patch models.TaskPatch) (*models.Task, error) {
	set := bson.M{"updatedAt": s.now()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Priority != nil {
		set["priority"] = *patch.Priority
	}
	if patch.Completed != nil {
		set["completed"] = *patch.Completed
	}
	if patch.UserID != nil {
		set["userId"] = *patch.UserID
	}

	update := bson.M{"$set": set, "$inc": bson.M{"rev": 1}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var task models.Task
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&task)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	if task.Comments == nil {
		task.Comments = []models.Comment{}
	}
	return &task, nil
}

func (s *MongoStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) MutateComments(ctx context.Context, id primitive.ObjectID, fn func(*models.Task) error) (*models.Task, error) {
	load := func(ctx context.Context) (*models.Task, error) {
		return s.Get(ctx, id)
	}
	return mutateWithRetry(ctx, load, s.swapComments, fn)
}

func (s *MongoStore) swapComments(ctx context.Context, task *models.Task, rev int64) (*models.Task, bool, error) {
	filter := bson.M{"_id": task.ID, "rev": rev}
	if rev == 0 {
		// documents written before revisions existed have no rev field
		filter["rev"] = bson.M{"$in": bson.A{0, nil}}
	}
	update := bson.M{
		"$set": bson.M{"comments": task.Comments, "updatedAt": s.now()},
		"$inc": bson.M{"rev": 1},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var saved models.Task
	err := s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&saved)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("save comments: %w", err)
	}
	return &saved, true, nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
