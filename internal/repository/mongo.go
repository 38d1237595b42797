package repository

import (
	"context"
	"errors"
	"time"

	"ripple/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// mongoPostRepository implements PostRepository on a MongoDB collection.
// Posts are native documents here; Save still goes through the same
// version compare-and-swap as the SQL store so both backends give the
// interaction service identical conflict semantics.
type mongoPostRepository struct {
	posts *mongodriver.Collection
}

// NewMongoPostRepository creates a post repository backed by the "posts"
// collection of the given database.
func NewMongoPostRepository(db *mongodriver.Database) PostRepository {
	return &mongoPostRepository{posts: db.Collection("posts")}
}

// likeDoc / commentDoc / postDoc are the wire shapes. UUIDs are stored as
// their canonical string form so documents stay readable in the shell.
type likeDoc struct {
	UserID    string    `bson:"user_id"`
	CreatedAt time.Time `bson:"created_at"`
}

type commentDoc struct {
	ID           string    `bson:"id"`
	AuthorID     string    `bson:"author_id"`
	AuthorName   string    `bson:"author_name"`
	AuthorAvatar string    `bson:"author_avatar"`
	Text         string    `bson:"text"`
	CreatedAt    time.Time `bson:"created_at"`
}

type postDoc struct {
	ID           string       `bson:"_id"`
	AuthorID     string       `bson:"author_id"`
	AuthorName   string       `bson:"author_name"`
	AuthorAvatar string       `bson:"author_avatar"`
	Text         string       `bson:"text"`
	Likes        []likeDoc    `bson:"likes"`
	Comments     []commentDoc `bson:"comments"`
	Version      int64        `bson:"version"`
	CreatedAt    time.Time    `bson:"created_at"`
	UpdatedAt    time.Time    `bson:"updated_at"`
}

func toDoc(p *models.Post) *postDoc {
	doc := &postDoc{
		ID:           p.ID.String(),
		AuthorID:     p.AuthorID.String(),
		AuthorName:   p.AuthorName,
		AuthorAvatar: p.AuthorAvatar,
		Text:         p.Text,
		Likes:        make([]likeDoc, 0, len(p.Likes)),
		Comments:     make([]commentDoc, 0, len(p.Comments)),
		Version:      p.Version,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	for _, l := range p.Likes {
		doc.Likes = append(doc.Likes, likeDoc{UserID: l.UserID.String(), CreatedAt: l.CreatedAt})
	}
	for _, c := range p.Comments {
		doc.Comments = append(doc.Comments, commentDoc{
			ID:           c.ID.String(),
			AuthorID:     c.AuthorID.String(),
			AuthorName:   c.AuthorName,
			AuthorAvatar: c.AuthorAvatar,
			Text:         c.Text,
			CreatedAt:    c.CreatedAt,
		})
	}
	return doc
}

func fromDoc(doc *postDoc) (*models.Post, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, err
	}
	authorID, err := uuid.Parse(doc.AuthorID)
	if err != nil {
		return nil, err
	}
	post := &models.Post{
		ID:           id,
		AuthorID:     authorID,
		AuthorName:   doc.AuthorName,
		AuthorAvatar: doc.AuthorAvatar,
		Text:         doc.Text,
		Likes:        make([]models.Like, 0, len(doc.Likes)),
		Comments:     make([]models.Comment, 0, len(doc.Comments)),
		Version:      doc.Version,
		CreatedAt:    doc.CreatedAt.UTC(),
		UpdatedAt:    doc.UpdatedAt.UTC(),
	}
	for _, l := range doc.Likes {
		userID, err := uuid.Parse(l.UserID)
		if err != nil {
			return nil, err
		}
		post.Likes = append(post.Likes, models.Like{UserID: userID, CreatedAt: l.CreatedAt.UTC()})
	}
	for _, c := range doc.Comments {
		commentID, err := uuid.Parse(c.ID)
		if err != nil {
			return nil, err
		}
		commentAuthor, err := uuid.Parse(c.AuthorID)
		if err != nil {
			return nil, err
		}
		post.Comments = append(post.Comments, models.Comment{
			ID:           commentID,
			AuthorID:     commentAuthor,
			AuthorName:   c.AuthorName,
			AuthorAvatar: c.AuthorAvatar,
			Text:         c.Text,
			CreatedAt:    c.CreatedAt.UTC(),
		})
	}
	return post, nil
}

func (r *mongoPostRepository) Create(ctx context.Context, post *models.Post) error {
	_, err := r.posts.InsertOne(ctx, toDoc(post))
	return err
}

func (r *mongoPostRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var doc postDoc
	err := r.posts.FindOne(ctx, bson.D{{Key: "_id", Value: id.String()}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return fromDoc(&doc)
}

func (r *mongoPostRepository) List(ctx context.Context) ([]*models.Post, error) {
	return r.find(ctx, bson.D{})
}

func (r *mongoPostRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]*models.Post, error) {
	return r.find(ctx, bson.D{{Key: "author_id", Value: authorID.String()}})
}

func (r *mongoPostRepository) find(ctx context.Context, filter bson.D) ([]*models.Post, error) {
	cur, err := r.posts.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var posts []*models.Post
	for cur.Next(ctx) {
		var doc postDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		post, err := fromDoc(&doc)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, cur.Err()
}

// Save replaces the document, filtered on both id and the version the
// caller loaded. MatchedCount zero means a concurrent writer or deletion;
// a count query tells the two apart.
func (r *mongoPostRepository) Save(ctx context.Context, post *models.Post) error {
	next := post.Clone()
	next.Version = post.Version + 1
	next.UpdatedAt = time.Now().UTC()

	res, err := r.posts.ReplaceOne(ctx,
		bson.D{
			{Key: "_id", Value: post.ID.String()},
			{Key: "version", Value: post.Version},
		},
		toDoc(next))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		count, err := r.posts.CountDocuments(ctx, bson.D{{Key: "_id", Value: post.ID.String()}})
		if err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrConflict
	}

	post.Version = next.Version
	post.UpdatedAt = next.UpdatedAt
	return nil
}

func (r *mongoPostRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.posts.DeleteOne(ctx, bson.D{{Key: "_id", Value: id.String()}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoPostRepository) Ping(ctx context.Context) error {
	return r.posts.Database().Client().Ping(ctx, readpref.Primary())
}
