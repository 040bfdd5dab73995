// Package mongo persists events and subjects in MongoDB, one document per
// record in the "events" and "subjects" collections.
package mongo

import (
	"context"
	"io"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"subjcal/internal/storage"
)

const (
	eventsCollection   = "events"
	subjectsCollection = "subjects"
)

// isoLayout renders instants the way the collections already store them:
// millisecond precision, UTC.
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

// Store implements storage.Store on a MongoDB database.
type Store struct {
	client   *mongo.Client
	events   *mongo.Collection
	subjects *mongo.Collection
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures the Store.
type Option func(*Store)

// WithLogger sets the logger for the store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New connects to MongoDB and verifies the connection before returning.
func New(ctx context.Context, uri, database string, opts ...Option) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, unavailable("failed to connect", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, unavailable("failed to reach server", err)
	}

	db := client.Database(database)
	s := &Store{
		client:   client,
		events:   db.Collection(eventsCollection),
		subjects: db.Collection(subjectsCollection),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func unavailable(msg string, err error) *storage.Error {
	return &storage.Error{Type: storage.ErrUnavailable, Message: msg, Err: err}
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, &storage.Error{
			Type:    storage.ErrInvalidID,
			Message: "malformed identifier: " + id,
			Err:     err,
		}
	}
	return oid, nil
}

type eventDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description,omitempty"`
	Start       string             `bson:"start"`
	End         string             `bson:"end"`
	AllDay      bool               `bson:"allDay"`
	Location    string             `bson:"location,omitempty"`
	Color       string             `bson:"color"`
	Subject     string             `bson:"subject,omitempty"`
	Created     time.Time          `bson:"createdAt,omitempty"`
	Modified    time.Time          `bson:"updatedAt,omitempty"`
}

func eventToDoc(fields storage.EventFields) eventDoc {
	return eventDoc{
		Title:       fields.Title,
		Description: fields.Description,
		Start:       fields.Start.UTC().Format(isoLayout),
		End:         fields.End.UTC().Format(isoLayout),
		AllDay:      fields.AllDay,
		Location:    fields.Location,
		Color:       fields.Color,
		Subject:     fields.Subject,
	}
}

func (d eventDoc) toEvent() storage.Event {
	start, _ := time.Parse(time.RFC3339, d.Start)
	end, _ := time.Parse(time.RFC3339, d.End)
	return storage.Event{
		ID:       d.ID.Hex(),
		Created:  d.Created,
		Modified: d.Modified,
		EventFields: storage.EventFields{
			Title:       d.Title,
			Description: d.Description,
			Start:       start,
			End:         end,
			AllDay:      d.AllDay,
			Location:    d.Location,
			Color:       d.Color,
			Subject:     d.Subject,
		},
	}
}

// Event operations

func (s *Store) ListEvents(ctx context.Context) ([]storage.Event, error) {
	cursor, err := s.events.Find(ctx, bson.M{})
	if err != nil {
		return nil, unavailable("failed to list events", err)
	}

	var docs []eventDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, unavailable("failed to decode events", err)
	}

	events := make([]storage.Event, 0, len(docs))
	for _, d := range docs {
		events = append(events, d.toEvent())
	}
	return events, nil
}

func (s *Store) InsertEvent(ctx context.Context, fields storage.EventFields) (storage.Event, error) {
	doc := eventToDoc(fields)
	doc.Created = s.now()
	doc.Modified = doc.Created

	res, err := s.events.InsertOne(ctx, doc)
	if err != nil {
		return storage.Event{}, unavailable("failed to insert event", err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)

	s.logger.Debug("event inserted", "id", doc.ID.Hex())
	return doc.toEvent(), nil
}

func (s *Store) ReplaceEvent(ctx context.Context, id string, fields storage.EventFields) (storage.Event, error) {
	oid, err := parseID(id)
	if err != nil {
		return storage.Event{}, err
	}

	doc := eventToDoc(fields)
	doc.Modified = s.now()

	res, err := s.events.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"title":       doc.Title,
		"description": doc.Description,
		"start":       doc.Start,
		"end":         doc.End,
		"allDay":      doc.AllDay,
		"location":    doc.Location,
		"color":       doc.Color,
		"subject":     doc.Subject,
		"updatedAt":   doc.Modified,
	}})
	if err != nil {
		return storage.Event{}, unavailable("failed to update event", err)
	}
	if res.MatchedCount == 0 {
		return storage.Event{}, &storage.Error{
			Type:    storage.ErrNotFound,
			Message: "event not found: " + id,
		}
	}

	doc.ID = oid
	return doc.toEvent(), nil
}

func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	res, err := s.events.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return unavailable("failed to delete event", err)
	}
	if res.DeletedCount == 0 {
		return &storage.Error{
			Type:    storage.ErrNotFound,
			Message: "event not found: " + id,
		}
	}

	s.logger.Debug("event deleted", "id", id)
	return nil
}

func (s *Store) DeleteEventsEndedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	// ISO strings in UTC sort lexically, so $lt on the string field is a
	// correct instant comparison.
	res, err := s.events.DeleteMany(ctx, bson.M{
		"end": bson.M{"$lt": cutoff.UTC().Format(isoLayout)},
	})
	if err != nil {
		return 0, unavailable("failed to purge events", err)
	}

	s.logger.Info("purged old events", "count", res.DeletedCount)
	return res.DeletedCount, nil
}

// Subject operations

type subjectDoc struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Name     string             `bson:"name"`
	Color    string             `bson:"color"`
	Active   bool               `bson:"isActive"`
	Created  time.Time          `bson:"createdAt,omitempty"`
	Modified time.Time          `bson:"updatedAt,omitempty"`
}

func (d subjectDoc) toSubject() storage.Subject {
	return storage.Subject{
		ID:       d.ID.Hex(),
		Created:  d.Created,
		Modified: d.Modified,
		SubjectFields: storage.SubjectFields{
			Name:   d.Name,
			Color:  d.Color,
			Active: d.Active,
		},
	}
}

func (s *Store) ListSubjects(ctx context.Context) ([]storage.Subject, error) {
	cursor, err := s.subjects.Find(ctx, bson.M{})
	if err != nil {
		return nil, unavailable("failed to list subjects", err)
	}

	var docs []subjectDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, unavailable("failed to decode subjects", err)
	}

	subjects := make([]storage.Subject, 0, len(docs))
	for _, d := range docs {
		subjects = append(subjects, d.toSubject())
	}
	return subjects, nil
}

func (s *Store) InsertSubject(ctx context.Context, fields storage.SubjectFields) (storage.Subject, error) {
	doc := subjectDoc{
		Name:     fields.Name,
		Color:    fields.Color,
		Active:   fields.Active,
		Created:  s.now(),
		Modified: s.now(),
	}

	res, err := s.subjects.InsertOne(ctx, doc)
	if err != nil {
		return storage.Subject{}, unavailable("failed to insert subject", err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)

	s.logger.Debug("subject inserted", "id", doc.ID.Hex(), "name", doc.Name)
	return doc.toSubject(), nil
}

func (s *Store) ReplaceSubject(ctx context.Context, id string, fields storage.SubjectFields) (storage.Subject, error) {
	oid, err := parseID(id)
	if err != nil {
		return storage.Subject{}, err
	}

	modified := s.now()
	res, err := s.subjects.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"name":      fields.Name,
		"color":     fields.Color,
		"isActive":  fields.Active,
		"updatedAt": modified,
	}})
	if err != nil {
		return storage.Subject{}, unavailable("failed to update subject", err)
	}
	if res.MatchedCount == 0 {
		return storage.Subject{}, &storage.Error{
			Type:    storage.ErrNotFound,
			Message: "subject not found: " + id,
		}
	}

	return storage.Subject{
		ID:            id,
		Modified:      modified,
		SubjectFields: fields,
	}, nil
}

// DeleteSubject removes the subject document if present. Events referencing
// it keep their last persisted color and subject id.
func (s *Store) DeleteSubject(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	if _, err := s.subjects.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return unavailable("failed to delete subject", err)
	}
	return nil
}
