package camera

import "github.com/leofalp/mirror/core/parse"

// Schema is the camera specification record. Only model_name and
// manufacturer are required; every other field defaults to null or an
// empty container.
var Schema = parse.NewSchema("camera",
	parse.StringField("model_name").Require(),
	parse.StringField("manufacturer").Require(),
	parse.StringListField("aliases"),
	parse.IntegerField("release_year"),
	parse.StringField("camera_type"),
	parse.StringField("positioning"),
	parse.StringField("production_status"),
	parse.StringField("user_level"),
	parse.StringField("learning_curve"),
	parse.ObjectField("price",
		parse.NumberField("launch_price_usd"),
		parse.ObjectField("current_price_usd",
			parse.NumberField("new"),
			parse.ObjectField("used",
				parse.NumberField("min"),
				parse.NumberField("max"),
			),
		),
		parse.StringField("currency"),
		parse.StringField("price_source"),
		parse.StringField("price_last_updated"),
		parse.StringField("value_rating"),
	),
	parse.ObjectField("regional_availability",
		parse.BoolField("north_america"),
		parse.BoolField("europe"),
		parse.BoolField("asia"),
		parse.BoolField("australia"),
		parse.StringListField("other_regions"),
	),
	parse.ObjectField("key_features",
		parse.ObjectField("sensor",
			parse.StringField("type"),
			parse.StringField("size"),
			parse.NumberField("resolution_mp"),
			parse.StringField("technology"),
		),
		parse.ObjectField("lens",
			parse.StringField("type"),
			parse.StringField("details"),
			parse.StringField("zoom_range"),
			parse.StringField("aperture_range"),
		),
		parse.StringField("image_processor"),
		parse.ObjectField("video",
			parse.StringField("resolution"),
			parse.StringField("frame_rate"),
			parse.StringField("bit_depth"),
			parse.StringListField("log_profiles"),
		),
		parse.ObjectField("autofocus",
			parse.StringField("system_type"),
			parse.IntegerField("af_points"),
			parse.BoolField("eye_af"),
			parse.BoolField("subject_tracking"),
		),
		parse.StringListField("shooting_modes"),
		parse.StringListField("special_shooting_modes"),
		parse.StringListField("exposure_metering_modes"),
		parse.BoolField("in_body_stabilization"),
		parse.StringField("iso_range"),
		parse.NumberField("burst_rate_fps"),
		parse.ObjectField("buffer_capacity",
			parse.IntegerField("raw"),
			parse.IntegerField("jpeg"),
			parse.StringField("clearing_time"),
		),
		parse.StringField("shutter_speed_range"),
		parse.ObjectField("flash",
			parse.BoolField("built_in"),
			parse.BoolField("hot_shoe"),
			parse.StringField("sync_speed"),
		),
		parse.StringListField("connectivity"),
	),
	parse.ObjectField("external_specs",
		parse.ObjectField("dimensions_mm",
			parse.NumberField("width"),
			parse.NumberField("height"),
			parse.NumberField("depth"),
		),
		parse.NumberField("weight_g"),
		parse.StringField("body_material"),
		parse.BoolField("weather_sealing"),
		parse.ObjectField("environmental_specs",
			parse.StringField("dust_water_rating"),
			parse.StringField("operating_temperature"),
			parse.StringField("operating_humidity"),
		),
		parse.ObjectField("screen",
			parse.StringField("type"),
			parse.NumberField("size_inches"),
			parse.BoolField("touch"),
			parse.IntegerField("resolution_dots"),
		),
		parse.ObjectField("viewfinder",
			parse.StringField("type"),
			parse.NumberField("magnification"),
			parse.NumberField("coverage_percent"),
			parse.IntegerField("resolution_dots"),
		),
	),
	parse.ObjectField("technical_specs",
		parse.StringField("mount_type"),
		parse.StringListField("storage"),
		parse.BoolField("dual_card_slots"),
		parse.ObjectField("battery",
			parse.StringField("model"),
			parse.StringField("type"),
			parse.IntegerField("shots_per_charge"),
			parse.StringListField("charging_options"),
		),
		parse.StringListField("interfaces"),
	),
	parse.ObjectField("video_features",
		parse.StringListField("internal_recording_formats"),
		parse.BoolField("external_recording"),
		parse.StringField("heat_management"),
		parse.StringListField("audio_features"),
		parse.StringField("recording_limits"),
	),
	parse.ObjectField("smart_features",
		parse.StringListField("ai_functions"),
		parse.StringListField("assist_tools"),
	),
	parse.ObjectField("pros_cons",
		parse.StringListField("pros"),
		parse.StringListField("cons"),
	),
	parse.ObjectField("history_and_background",
		parse.StringField("story"),
		parse.StringListField("notable_users"),
		parse.StringField("cultural_impact"),
		parse.ObjectListField("key_timeline",
			parse.StringField("date"),
			parse.StringField("event").Require(),
		),
	),
	parse.ObjectField("lens_information",
		parse.StringField("mount_system_notes"),
		parse.ObjectListField("recommended_lenses",
			parse.StringField("name").Require(),
			parse.StringField("type"),
			parse.StringField("notes"),
		),
	),
	parse.ObjectListField("recommended_accessories",
		parse.StringField("type"),
		parse.StringField("name").Require(),
		parse.StringField("description"),
		parse.StringField("compatibility_notes"),
	),
	parse.ObjectField("usage_experience",
		parse.StringField("handling"),
		parse.StringField("build_quality"),
		parse.StringField("viewfinder_experience"),
		parse.StringField("screen_experience"),
		parse.StringField("menu_system"),
		parse.StringListField("common_issues"),
	),
	parse.ObjectField("photography_performance",
		parse.StringListField("strengths"),
		parse.StringListField("limitations"),
		parse.StringField("typical_image_style"),
	),
	parse.ObjectField("firmware_information",
		parse.StringField("latest_version"),
		parse.StringField("release_date"),
		parse.StringListField("notable_improvements"),
		parse.StringListField("known_issues"),
	),
	parse.ObjectListField("notable_reviews",
		parse.StringField("author_publication").Require(),
		parse.StringField("url"),
		parse.StringField("summary"),
		parse.StringField("rating"),
	),
	parse.ObjectField("user_sentiment",
		parse.StringListField("strengths"),
		parse.StringListField("weaknesses"),
		parse.StringField("general_sentiment"),
	),
	parse.ObjectListField("image_samples",
		parse.StringField("source"),
		parse.StringField("url").Require(),
	),
	parse.ObjectListField("community_resources",
		parse.StringField("type"),
		parse.StringField("name").Require(),
		parse.StringField("url"),
		parse.StringField("description"),
	),
	parse.ObjectListField("similar_cameras",
		parse.StringField("manufacturer"),
		parse.StringField("model").Require(),
		parse.StringField("reason"),
	),
	parse.ObjectField("external_links",
		parse.StringField("official_product_page"),
		parse.StringField("support_and_manuals"),
		parse.StringField("firmware_updates"),
	),
	parse.ObjectListField("data_sources",
		parse.StringField("name").Require(),
		parse.StringField("url"),
		parse.StringField("accessed_date"),
	),
	parse.StringField("last_updated"),
)

// scalarColumns are the top-level fields stored in their own columns.
// Every other top-level field is a section.
var scalarColumns = map[string]bool{
	"model_name":   true,
	"manufacturer": true,
	"aliases":      true,
	"release_year": true,
	"camera_type":  true,
	"user_level":   true,
}

// SectionNames lists the top-level fields stored as JSON documents, in
// schema order.
func SectionNames() []string {
	var names []string
	for _, f := range Schema.Fields {
		if !scalarColumns[f.Name] {
			names = append(names, f.Name)
		}
	}
	return names
}
