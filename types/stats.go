package types

import "time"

// Stats is the transport metric record of one HTTP exchange. Field names
// follow the curl info record; Metric exposes the same values by their curl
// names.
type Stats struct {
	HTTPCode        int
	URL             string
	ContentType     string
	HeaderSize      int64
	RequestSize     int64
	FileTime        int64
	SSLVerifyResult int64
	RedirectCount   int64

	TotalTime         time.Duration
	NameLookupTime    time.Duration
	ConnectTime       time.Duration
	PreTransferTime   time.Duration
	StartTransferTime time.Duration
	RedirectTime      time.Duration

	SizeUpload            int64
	SizeDownload          int64
	SpeedUpload           float64
	SpeedDownload         float64
	UploadContentLength   int64
	DownloadContentLength int64

	CertInfo []CertInfo
}

// Metric returns the metric stored under a curl info name, for example
// "http_code" or "total_time". Timings are returned in seconds as float64.
// ok is false for unknown names.
func (s *Stats) Metric(name string) (v any, ok bool) {
	if s == nil {
		return nil, false
	}
	switch name {
	case "http_code":
		return s.HTTPCode, true
	case "url":
		return s.URL, true
	case "content_type":
		return s.ContentType, true
	case "header_size":
		return s.HeaderSize, true
	case "request_size":
		return s.RequestSize, true
	case "filetime":
		return s.FileTime, true
	case "ssl_verify_result":
		return s.SSLVerifyResult, true
	case "redirect_count":
		return s.RedirectCount, true
	case "total_time":
		return s.TotalTime.Seconds(), true
	case "namelookup_time":
		return s.NameLookupTime.Seconds(), true
	case "connect_time":
		return s.ConnectTime.Seconds(), true
	case "pretransfer_time":
		return s.PreTransferTime.Seconds(), true
	case "starttransfer_time":
		return s.StartTransferTime.Seconds(), true
	case "redirect_time":
		return s.RedirectTime.Seconds(), true
	case "size_upload":
		return s.SizeUpload, true
	case "size_download":
		return s.SizeDownload, true
	case "speed_upload":
		return s.SpeedUpload, true
	case "speed_download":
		return s.SpeedDownload, true
	case "upload_content_length":
		return s.UploadContentLength, true
	case "download_content_length":
		return s.DownloadContentLength, true
	case "certinfo":
		return s.CertInfo, true
	}
	return nil, false
}
