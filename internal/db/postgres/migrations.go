package postgres

// SQL-миграции встроены в код для упрощения деплоя.
var migrations = []struct {
	version int
	sql     string
}{
	{1, migration001Scores},
	{2, migration002History},
	{3, migration003MonitoredChannels},
}

var migration001Scores = `
CREATE TABLE IF NOT EXISTS social_credit_scores (
    user_id TEXT NOT NULL,
    guild_id TEXT NOT NULL,
    username TEXT NOT NULL DEFAULT '',
    score BIGINT NOT NULL DEFAULT 0,
    total_changes BIGINT NOT NULL DEFAULT 0,
    last_updated TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (user_id, guild_id)
);
CREATE INDEX IF NOT EXISTS idx_scores_guild_score ON social_credit_scores(guild_id, score DESC);
CREATE INDEX IF NOT EXISTS idx_scores_score ON social_credit_scores(score DESC);
`

var migration002History = `
CREATE TABLE IF NOT EXISTS score_history (
    seq BIGSERIAL PRIMARY KEY,
    id UUID UNIQUE NOT NULL,
    user_id TEXT NOT NULL,
    guild_id TEXT NOT NULL,
    score_change BIGINT NOT NULL,
    previous_score BIGINT NOT NULL,
    new_score BIGINT NOT NULL,
    reason TEXT NOT NULL,
    message_content TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CHECK (new_score - previous_score = score_change)
);
CREATE INDEX IF NOT EXISTS idx_history_user_guild ON score_history(user_id, guild_id, seq DESC);
`

var migration003MonitoredChannels = `
CREATE TABLE IF NOT EXISTS monitored_channels (
    guild_id TEXT NOT NULL,
    channel_id TEXT NOT NULL,
    channel_name TEXT NOT NULL DEFAULT '',
    added_by TEXT NOT NULL,
    added_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (guild_id, channel_id)
);
`
