package config

import (
	"github.com/agrovista/mediavault/bytesize"
	"github.com/agrovista/mediavault/media"
	"github.com/agrovista/mediavault/media/codec"
)

type Config struct {
	Debug   bool    `mapstructure:"debug"`
	Server  Server  `mapstructure:"server"`
	Media   Media   `mapstructure:"media"`
	Storage Storage `mapstructure:"storage"`
}

type Server struct {
	Address   string       `mapstructure:"address" validate:"required,hostname|ip"`
	Port      int          `mapstructure:"port" validate:"required,min=1,max=65535"`
	PublicUrl string       `mapstructure:"public_url" validate:"required,url"`
	Limits    ServerLimits `mapstructure:"limits"`
}

type ServerLimits struct {
	MaxRequestSize  bytesize.ByteSize `mapstructure:"max_request_size" validate:"required"`
	MaxMultipartMem bytesize.ByteSize `mapstructure:"max_multipart_mem" validate:"required"`
}

// Media holds the pipeline tuning: per-kind payload ceilings, the aggregate
// capacity ceiling, and the codec's resize/quality parameters.
type Media struct {
	ImageCeiling   bytesize.ByteSize `mapstructure:"image_ceiling" validate:"required"`
	VideoCeiling   bytesize.ByteSize `mapstructure:"video_ceiling" validate:"required,gtefield=ImageCeiling"`
	TotalCeiling   bytesize.ByteSize `mapstructure:"total_ceiling" validate:"required,gtefield=VideoCeiling"`
	MaxDimension   int               `mapstructure:"max_dimension" validate:"required,min=1"`
	InitialQuality int               `mapstructure:"initial_quality" validate:"required,min=1,max=100"`
}

// Limits converts the configured ceilings into the pipeline's limits value.
func (m Media) Limits() media.Limits {
	return media.Limits{
		ImageCeiling: m.ImageCeiling.Int64(),
		VideoCeiling: m.VideoCeiling.Int64(),
		TotalCeiling: m.TotalCeiling.Int64(),
	}
}

// CodecOptions converts the configured codec tuning into codec options.
func (m Media) CodecOptions() codec.Options {
	return codec.Options{
		MaxDimension:   m.MaxDimension,
		InitialQuality: m.InitialQuality,
		Ceiling:        m.ImageCeiling.Int64(),
	}
}

type Storage struct {
	Strategy   string              `mapstructure:"strategy" validate:"required,oneof=badger filesystem"`
	Badger     *BadgerStrategy     `mapstructure:"badger" validate:"required_if=Strategy badger"`
	Filesystem *FilesystemStrategy `mapstructure:"filesystem" validate:"required_if=Strategy filesystem"`
}

type BadgerStrategy struct {
	Path string `mapstructure:"path" validate:"required,abspath"`
}

type FilesystemStrategy struct {
	Path      string `mapstructure:"path" validate:"required,abspath"`
	PublicUrl string `mapstructure:"public_url" validate:"required,url"`
}
