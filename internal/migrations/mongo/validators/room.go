package validators

import "go.mongodb.org/mongo-driver/bson"

var RoomValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"name", "capacity", "created_at"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},

			"capacity": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
				"maximum":  10000,
			},

			"location": bson.M{
				"bsonType":  "string",
				"maxLength": 200,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
