package keyb

// cpxBucket is one CPX-file bucket: the code pages it provides and the
// logical blob name ("auto" resolution opens this name before falling
// back through Fileset then BuiltinBlobs).
type cpxBucket struct {
	file      string
	codepages []int
}

// cpxCatalog reproduces keyboard_layout::get_CPX_file_id's 18-bucket
// switch statement: the FreeDOS cpidos EGA*.CPX set, each bundling a
// fixed group of code pages. "auto" resolution in Session.Load/Switch
// walks this table to pick a file name from a bare numeric id.
var cpxCatalog = []cpxBucket{
	{"ega.cpx", []int{437, 850, 852, 853, 857, 858}},
	{"ega2.cpx", []int{775, 859, 1116, 1117, 1118, 1119}},
	{"ega3.cpx", []int{771, 772, 808, 855, 866, 872}},
	{"ega4.cpx", []int{848, 849, 1125, 1131, 3012, 30010}},
	{"ega5.cpx", []int{113, 737, 851, 869}},
	{"ega6.cpx", []int{899, 30008, 58210, 59829, 60258, 60853}},
	{"ega7.cpx", []int{30011, 30013, 30014, 30017, 30018, 30019}},
	{"ega8.cpx", []int{770, 773, 774, 777, 778}},
	{"ega9.cpx", []int{860, 861, 863, 865, 867}},
	{"ega10.cpx", []int{667, 668, 790, 991, 3845}},
	{"ega11.cpx", []int{30000, 30001, 30004, 30007, 30009}},
	{"ega12.cpx", []int{30003, 30029, 30030, 58335}},
	{"ega13.cpx", []int{895, 30002, 58152, 59234, 62306}},
	{"ega14.cpx", []int{30006, 30012, 30015, 30016, 30020, 30021}},
	{"ega15.cpx", []int{30023, 30024, 30025, 30026, 30027, 30028}},
	{"ega16.cpx", []int{3021, 30005, 30022, 30031, 30032}},
	{"ega17.cpx", []int{862, 864, 30034, 30033, 30039, 30040}},
	{"ega18.cpx", []int{856, 3846, 3848}},
}

// cpxFileFor returns the bucket file name bundling codepageID, or "" if no
// bucket declares that code page (matching a -1 return from
// get_CPX_file_id).
func cpxFileFor(codepageID int) string {
	for _, b := range cpxCatalog {
		for _, cp := range b.codepages {
			if cp == codepageID {
				return b.file
			}
		}
	}
	return ""
}
