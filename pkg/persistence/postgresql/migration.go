package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Create generation_jobs table
			CREATE TABLE generation_jobs (
				id UUID PRIMARY KEY,
				prompt TEXT NOT NULL,
				answers JSONB,
				config JSONB,
				status VARCHAR(50) NOT NULL CHECK (status IN ('queued', 'running', 'completed', 'failed')),
				progress INT NOT NULL DEFAULT 0,
				result JSONB,
				error TEXT,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				completed_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX idx_generation_jobs_status ON generation_jobs(status);
			CREATE INDEX idx_generation_jobs_created_at ON generation_jobs(created_at);
		`,
	}
}
