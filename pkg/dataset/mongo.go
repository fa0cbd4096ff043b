package dataset

import (
	"context"
	"fmt"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pgrunwald/svgpie/pkg/errors"
)

// LoadMongo reads a dataset from a MongoDB collection. Each document
// becomes one row; columns names the document fields to extract, in the
// order they should appear. Documents are read in natural collection
// order, which becomes the slice draw order.
func LoadMongo(ctx context.Context, uri, database, collection string, columns []string) (*Dataset, error) {
	if len(columns) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidColumn, "at least one column field is required")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "connecting to %s", uri)
	}
	defer func() { _ = client.Disconnect(ctx) }()

	cur, err := client.Database(database).Collection(collection).Find(ctx, bson.D{})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "querying %s.%s", database, collection)
	}
	defer cur.Close(ctx)

	var rows [][]string
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "decoding document %d", len(rows))
		}
		row := make([]string, len(columns))
		for i, col := range columns {
			v, ok := doc[col]
			if !ok {
				return nil, errors.New(errors.ErrCodeInvalidColumn,
					"document %d has no field %q", len(rows), col)
			}
			row[i] = stringify(v)
		}
		rows = append(rows, row)
	}
	if err := cur.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "iterating %s.%s", database, collection)
	}

	return New(columns, rows)
}

// stringify renders a BSON value as a dataset cell. Numeric types keep
// their shortest exact representation so value parsing round-trips.
func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return fmt.Sprintf("%v", t)
	}
}
