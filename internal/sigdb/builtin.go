package sigdb

// NewBuiltinDatabase returns the signature set shipped with the matcher:
// at least one TCP+ICMP profile per major family the spec names. Ranges are drawn
// from well-known stack defaults (Linux's 64/29200, Windows's 128/8192 or
// 64240 depending on release, BSD's 64/65535, Cisco IOS's 255/4128).
func NewBuiltinDatabase() *Database {
	db := New("builtin", "1.0.0")

	db.Add(&OsSignature{
		OsName: "Linux 2.6+", OsFamily: "Linux", OsVersion: "2.6+",
		TCP: &TcpSignature{
			TTLMin: 64, TTLMax: 64,
			WindowMin: 5792, WindowMax: 29200,
			MSS: 1460, DFFlag: true,
			OptionOrder: []uint8{2, 4, 8, 1, 3},
		},
		ICMP:             &IcmpSignature{TTLMin: 64, TTLMax: 64, PayloadEchoed: true},
		ConfidenceWeight: 0.9,
	})

	db.Add(&OsSignature{
		OsName: "Windows 10/11", OsFamily: "Windows", OsVersion: "10/11",
		TCP: &TcpSignature{
			TTLMin: 128, TTLMax: 128,
			WindowMin: 8192, WindowMax: 65535,
			MSS: 1460, DFFlag: true,
			OptionOrder: []uint8{2, 1, 3, 1, 1, 4},
		},
		ICMP:             &IcmpSignature{TTLMin: 128, TTLMax: 128, PayloadEchoed: true},
		ConfidenceWeight: 0.88,
	})

	db.Add(&OsSignature{
		OsName: "Windows Server", OsFamily: "Windows", OsVersion: "2016+",
		TCP: &TcpSignature{
			TTLMin: 128, TTLMax: 128,
			WindowMin: 8192, WindowMax: 65535,
			MSS: 1460, DFFlag: true,
		},
		ICMP:             &IcmpSignature{TTLMin: 128, TTLMax: 128, PayloadEchoed: true},
		ConfidenceWeight: 0.85,
	})

	db.Add(&OsSignature{
		OsName: "macOS 10.x-13.x", OsFamily: "Darwin", OsVersion: "10.x-13.x",
		TCP: &TcpSignature{
			TTLMin: 64, TTLMax: 64,
			WindowMin: 65535, WindowMax: 65535,
			MSS: 1460, DFFlag: true,
			OptionOrder: []uint8{2, 4, 8, 1, 3},
		},
		ICMP:             &IcmpSignature{TTLMin: 64, TTLMax: 64, PayloadEchoed: true},
		ConfidenceWeight: 0.85,
	})

	db.Add(&OsSignature{
		OsName: "FreeBSD 11.x-13.x", OsFamily: "BSD", OsVersion: "11.x-13.x",
		TCP: &TcpSignature{
			TTLMin: 64, TTLMax: 64,
			WindowMin: 65535, WindowMax: 65535,
			MSS: 1460, DFFlag: true,
		},
		ICMP:             &IcmpSignature{TTLMin: 64, TTLMax: 64, PayloadEchoed: true},
		ConfidenceWeight: 0.8,
	})

	db.Add(&OsSignature{
		OsName: "Cisco IOS", OsFamily: "IOS", OsVersion: "",
		TCP: &TcpSignature{
			TTLMin: 255, TTLMax: 255,
			WindowMin: 4128, WindowMax: 4128,
			MSS: 536, DFFlag: false,
		},
		ICMP:             &IcmpSignature{TTLMin: 255, TTLMax: 255, PayloadEchoed: true},
		ConfidenceWeight: 0.75,
	})

	db.Add(&OsSignature{
		OsName: "Embedded Linux", OsFamily: "Linux", OsVersion: "",
		TCP: &TcpSignature{
			TTLMin: 64, TTLMax: 64,
			WindowMin: 1024, WindowMax: 16384,
			MSS: 1460, DFFlag: false,
		},
		ICMP:             &IcmpSignature{TTLMin: 64, TTLMax: 64, PayloadEchoed: true},
		ConfidenceWeight: 0.6,
	})

	return db
}
