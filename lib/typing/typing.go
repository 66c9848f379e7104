package typing

type KindDetails struct {
	Kind string
}

var (
	Invalid = KindDetails{
		Kind: "invalid",
	}

	String = KindDetails{
		Kind: "string",
	}

	Integer = KindDetails{
		Kind: "int",
	}

	Float = KindDetails{
		Kind: "float",
	}

	Boolean = KindDetails{
		Kind: "bool",
	}

	Date = KindDetails{
		Kind: "date",
	}

	// TimestampNTZ is a wall clock timestamp, NYC trip records are written this way.
	TimestampNTZ = KindDetails{
		Kind: "timestamp_ntz",
	}

	TimestampTZ = KindDetails{
		Kind: "timestamp_tz",
	}
)
