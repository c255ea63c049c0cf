package domain

// RunSummary holds the counters printed at the end of an archive run.
type RunSummary struct {
	Processed         int
	Saved             int
	SkippedDuplicates int
	SkippedSponsored  int
	Photos            int
	Videos            int
	Albums            int
	SponsoredIncluded int
	CommentsFetched   int
	FilesDownloaded   int
	SnapshotFile      string
}

// Count tallies one saved post into the per-media-type counters.
func (s *RunSummary) Count(post *Post) {
	s.Saved++
	switch post.MediaTypeName {
	case MediaNamePhoto:
		s.Photos++
	case MediaNameVideo:
		s.Videos++
	case MediaNameAlbum:
		s.Albums++
	}
	if post.IsSponsored {
		s.SponsoredIncluded++
	}
	s.CommentsFetched += len(post.Comments)
	s.FilesDownloaded += len(post.DownloadedFiles)
}
