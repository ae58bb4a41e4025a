package common

const (
	RedisStreamInsightPersisted  = "video.insight.persisted"
	RedisStreamInsightDeadLetter = "video.insight.persisted.dead"

	RedisStreamGroup    = "executor-group"
	RedisStreamConsumer = "executor-consumer"

	// DocumentDateLayout is the day/month/year layout of the persisted Upload Date.
	DocumentDateLayout = "02/01/2006"
	// CompactDateLayout is the YYYYMMDD layout used by the video source.
	CompactDateLayout = "20060102"
	ISODateLayout     = "2006-01-02"
)
