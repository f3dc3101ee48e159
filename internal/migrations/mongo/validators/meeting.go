package validators

import "go.mongodb.org/mongo-driver/bson"

var MeetingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"title",
			"room_id",
			"organizer_id",
			"start_date",
			"duration_min",
			"participant_user_ids",
			"is_approved",
			"deleted",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"title": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 200,
			},

			"room_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"organizer_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"start_date": bson.M{
				"bsonType": "date",
			},

			"duration_min": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
				"maximum":  1440,
			},

			"participant_user_ids": bson.M{
				"bsonType":    "array",
				"minItems":    1,
				"maxItems":    500,
				"uniqueItems": true,
				"items": bson.M{
					"bsonType": "string",
				},
			},

			"is_approved": bson.M{
				"bsonType": "bool",
			},

			"deleted": bson.M{
				"bsonType": "bool",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
