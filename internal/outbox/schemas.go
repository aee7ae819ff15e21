package outbox

const athleteRegisteredSchema = `{
  "type": "object",
  "title": "AthleteRegistered",
  "properties": {
    "athlete_id": {"type": "string"},
    "username": {"type": "string"},
    "registered_at": {"type": "string", "format": "date-time"}
  },
  "required": ["athlete_id", "username", "registered_at"],
  "additionalProperties": false
}`

const exerciseLoggedSchema = `{
  "type": "object",
  "title": "ExerciseLogged",
  "properties": {
    "exercise_id": {"type": "string"},
    "athlete_id": {"type": "string"},
    "description": {"type": "string"},
    "duration_min": {"type": "number"},
    "date": {"type": "string", "format": "date"},
    "logged_at": {"type": "string", "format": "date-time"}
  },
  "required": ["exercise_id", "athlete_id", "description", "duration_min", "date", "logged_at"],
  "additionalProperties": false
}`
