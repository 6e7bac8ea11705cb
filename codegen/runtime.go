package codegen

import (
	"fmt"
	"strings"
)

// elemTrait carries everything the array runtime emitter needs to know
// about one element type: how to spell it in C, how to compare two values
// and how to print one. A nil less or print means the operation is not
// available for the type and its functions are not emitted.
type elemTrait struct {
	name  string // the Array_<type> C type name
	ctype string
	eq    func(a, b string) string
	less  func(a, b string) string
	print func(v string) string // statement printing v, no trailing newline
}

// reduceVar is one reduce instantiation for an element type.
type reduceVar struct {
	fn    string // generated function name
	ctype string // accumulator C type
}

func writePrelude(w *strings.Builder, needTime bool) {
	w.WriteString("/* Generated C source. Edit the .foob sources instead. */\n")
	w.WriteString("#include <stdio.h>\n")
	w.WriteString("#include <stdlib.h>\n")
	w.WriteString("#include <string.h>\n")
	w.WriteString("#include <stdbool.h>\n")
	w.WriteString("#include <ctype.h>\n")
	w.WriteString("#include <limits.h>\n")
	w.WriteString("#include <math.h>\n")
	if needTime {
		w.WriteString("#include <time.h>\n")
	}
	w.WriteString("\n")
}

func writeStringCore(w *strings.Builder) {
	w.WriteString(`typedef struct String {
	char* data;
	int length;
} String;

String String_new(const char* data, int length) {
	String s;
	s.length = length;
	s.data = malloc((size_t)length + 1);
	memcpy(s.data, data, (size_t)length);
	s.data[length] = '\0';
	return s;
}

String String_from_cstr(const char* s) {
	return String_new(s, (int)strlen(s));
}

String String_concat(String a, String b) {
	String r;
	r.length = a.length + b.length;
	r.data = malloc((size_t)r.length + 1);
	memcpy(r.data, a.data, (size_t)a.length);
	memcpy(r.data + a.length, b.data, (size_t)b.length);
	r.data[r.length] = '\0';
	return r;
}

bool String_equals(String a, String b) {
	return a.length == b.length && memcmp(a.data, b.data, (size_t)a.length) == 0;
}

int String_compare(String a, String b) {
	int n = a.length < b.length ? a.length : b.length;
	int c = memcmp(a.data, b.data, (size_t)n);
	if (c != 0) {
		return c;
	}
	return a.length - b.length;
}

String String_substring(String s, int start, int end) {
	if (start < 0) {
		start = 0;
	}
	if (end > s.length) {
		end = s.length;
	}
	if (end < start) {
		end = start;
	}
	return String_new(s.data + start, end - start);
}

String String_to_upper(String s) {
	String r = String_new(s.data, s.length);
	for (int i = 0; i < r.length; i++) {
		r.data[i] = (char)toupper((unsigned char)r.data[i]);
	}
	return r;
}

String String_to_lower(String s) {
	String r = String_new(s.data, s.length);
	for (int i = 0; i < r.length; i++) {
		r.data[i] = (char)tolower((unsigned char)r.data[i]);
	}
	return r;
}

String String_replace(String s, String from, String to) {
	if (from.length == 0) {
		return String_new(s.data, s.length);
	}
	int count = 0;
	for (int i = 0; i + from.length <= s.length; ) {
		if (memcmp(s.data + i, from.data, (size_t)from.length) == 0) {
			count++;
			i += from.length;
		} else {
			i++;
		}
	}
	String r;
	r.length = s.length + count * (to.length - from.length);
	r.data = malloc((size_t)r.length + 1);
	int w = 0;
	for (int i = 0; i < s.length; ) {
		if (i + from.length <= s.length && memcmp(s.data + i, from.data, (size_t)from.length) == 0) {
			memcpy(r.data + w, to.data, (size_t)to.length);
			w += to.length;
			i += from.length;
		} else {
			r.data[w++] = s.data[i++];
		}
	}
	r.data[r.length] = '\0';
	return r;
}

String String_trim(String s) {
	int start = 0;
	int end = s.length;
	while (start < end && isspace((unsigned char)s.data[start])) {
		start++;
	}
	while (end > start && isspace((unsigned char)s.data[end - 1])) {
		end--;
	}
	return String_new(s.data + start, end - start);
}

int String_to_integer(String s) {
	return (int)strtol(s.data, NULL, 10);
}

float String_to_float(String s) {
	return strtof(s.data, NULL);
}

String int_to_string(int v) {
	char buf[32];
	snprintf(buf, sizeof buf, "%d", v);
	return String_from_cstr(buf);
}

String long_to_string(long long v) {
	char buf[32];
	snprintf(buf, sizeof buf, "%lld", v);
	return String_from_cstr(buf);
}

String float_to_string(float v) {
	char buf[64];
	snprintf(buf, sizeof buf, "%g", (double)v);
	return String_from_cstr(buf);
}

String longfloat_to_string(double v) {
	char buf[64];
	snprintf(buf, sizeof buf, "%g", v);
	return String_from_cstr(buf);
}

String char_to_string(char v) {
	char buf[2];
	buf[0] = v;
	buf[1] = '\0';
	return String_new(buf, 1);
}

String bool_to_string(bool v) {
	return String_from_cstr(v ? "true" : "false");
}

float int_to_float(int v) {
	return (float)v;
}

int float_to_int(float v) {
	return (int)v;
}

`)
}

func writePowerHelpers(w *strings.Builder, intPow, longPow bool) {
	if intPow {
		w.WriteString(`int int_pow(int base, int exp) {
	if (exp < 0) {
		if (base == 1) {
			return 1;
		}
		if (base == -1) {
			return (exp & 1) ? -1 : 1;
		}
		return 0;
	}
	int r = 1;
	while (exp > 0) {
		if (exp & 1) {
			r *= base;
		}
		base *= base;
		exp >>= 1;
	}
	return r;
}

`)
	}
	if longPow {
		w.WriteString(`long long long_pow(long long base, long long exp) {
	if (exp < 0) {
		if (base == 1) {
			return 1;
		}
		if (base == -1) {
			return (exp & 1) ? -1 : 1;
		}
		return 0;
	}
	long long r = 1;
	while (exp > 0) {
		if (exp & 1) {
			r *= base;
		}
		base *= base;
		exp >>= 1;
	}
	return r;
}

`)
	}
}

func writeEnumSection(w *strings.Builder, typeName string, constNames, values []string, namesVar, toStringFn string) {
	w.WriteString("typedef enum {\n")
	for i, c := range constNames {
		fmt.Fprintf(w, "\t%s = %d,\n", c, i)
	}
	fmt.Fprintf(w, "} %s;\n\n", typeName)

	fmt.Fprintf(w, "static const char* %s[] = {", namesVar)
	for i, v := range values {
		if i > 0 {
			w.WriteString(", ")
		}
		fmt.Fprintf(w, "%q", v)
	}
	w.WriteString("};\n\n")

	fmt.Fprintf(w, "String %s(%s v) {\n\treturn String_from_cstr(%s[v]);\n}\n\n",
		toStringFn, typeName, namesVar)
}

func writeArrayTypedef(w *strings.Builder, tr elemTrait) {
	fmt.Fprintf(w, "typedef struct {\n\t%s* data;\n\tint length;\n\tint capacity;\n} %s;\n\n", tr.ctype, tr.name)
}

func writeArraySection(w *strings.Builder, tr elemTrait, reduces []reduceVar) {
	n := tr.name
	et := tr.ctype

	fmt.Fprintf(w, `%[1]s %[1]s_make(int capacity) {
	%[1]s a;
	a.length = 0;
	a.capacity = capacity > 0 ? capacity : 1;
	a.data = malloc(sizeof(%[2]s) * (size_t)a.capacity);
	return a;
}

%[1]s %[1]s_lit(int n, %[2]s* items) {
	%[1]s a = %[1]s_make(n);
	for (int i = 0; i < n; i++) {
		a.data[i] = items[i];
	}
	a.length = n;
	return a;
}

%[1]s %[1]s_copy(%[1]s a) {
	%[1]s r = %[1]s_make(a.length);
	for (int i = 0; i < a.length; i++) {
		r.data[i] = a.data[i];
	}
	r.length = a.length;
	return r;
}

%[2]s %[1]s_get(%[1]s a, int i) {
	if (i < 0) {
		i += a.length;
	}
	if (i < 0 || i >= a.length) {
		fprintf(stderr, "runtime error: index %%d out of bounds for length %%d\n", i, a.length);
		exit(1);
	}
	return a.data[i];
}

%[2]s %[1]s_set(%[1]s* a, int i, %[2]s v) {
	if (i < 0) {
		i += a->length;
	}
	if (i < 0 || i >= a->length) {
		fprintf(stderr, "runtime error: index %%d out of bounds for length %%d\n", i, a->length);
		exit(1);
	}
	a->data[i] = v;
	return v;
}

%[1]s %[1]s_slice(%[1]s a, int lo, int hi, int lo_adj, int hi_adj) {
	if (lo < 0) {
		lo += a.length;
	}
	if (hi < 0) {
		hi += a.length;
	}
	lo += lo_adj;
	hi += hi_adj;
	if (lo < 0) {
		lo = 0;
	}
	if (hi > a.length) {
		hi = a.length;
	}
	if (hi < lo) {
		hi = lo;
	}
	%[1]s r = %[1]s_make(hi - lo);
	for (int i = lo; i < hi; i++) {
		r.data[r.length++] = a.data[i];
	}
	return r;
}

%[1]s %[1]s_concat(%[1]s a, %[1]s b) {
	%[1]s r = %[1]s_make(a.length + b.length);
	for (int i = 0; i < a.length; i++) {
		r.data[r.length++] = a.data[i];
	}
	for (int i = 0; i < b.length; i++) {
		r.data[r.length++] = b.data[i];
	}
	return r;
}

void %[1]s_append(%[1]s* a, %[2]s v) {
	if (a->length == a->capacity) {
		a->capacity *= 2;
		a->data = realloc(a->data, sizeof(%[2]s) * (size_t)a->capacity);
	}
	a->data[a->length++] = v;
}

%[1]s %[1]s_map(%[1]s a, %[2]s (*f)(%[2]s)) {
	%[1]s r = %[1]s_make(a.length);
	for (int i = 0; i < a.length; i++) {
		r.data[r.length++] = f(a.data[i]);
	}
	return r;
}

%[1]s %[1]s_filter(%[1]s a, bool (*f)(%[2]s)) {
	%[1]s r = %[1]s_make(a.length);
	for (int i = 0; i < a.length; i++) {
		if (f(a.data[i])) {
			r.data[r.length++] = a.data[i];
		}
	}
	return r;
}

int %[1]s_find(%[1]s a, %[2]s v) {
	for (int i = 0; i < a.length; i++) {
		if (%[3]s) {
			return i;
		}
	}
	return -1;
}

`, n, et, tr.eq("a.data[i]", "v"))

	if tr.less != nil {
		fmt.Fprintf(w, `%[1]s %[1]s_sort(%[1]s a) {
	%[1]s r = %[1]s_copy(a);
	for (int i = 1; i < r.length; i++) {
		%[2]s key = r.data[i];
		int j = i - 1;
		while (j >= 0 && %[3]s) {
			r.data[j + 1] = r.data[j];
			j--;
		}
		r.data[j + 1] = key;
	}
	return r;
}

`, n, et, tr.less("key", "r.data[j]"))

		fmt.Fprintf(w, `%[1]s %[1]s_unique(%[1]s a) {
	%[1]s r = %[1]s_make(a.length);
	for (int i = 0; i < a.length; i++) {
		bool seen = false;
		for (int j = 0; j < r.length; j++) {
			if (%[2]s) {
				seen = true;
				break;
			}
		}
		if (!seen) {
			r.data[r.length++] = a.data[i];
		}
	}
	return r;
}

`, n, tr.eq("r.data[j]", "a.data[i]"))
	}

	if tr.print != nil {
		fmt.Fprintf(w, `void %s_print(%s a) {
	printf("[");
	for (int i = 0; i < a.length; i++) {
		if (i > 0) {
			printf(", ");
		}
		%s;
	}
	printf("]\n");
}

`, n, n, tr.print("a.data[i]"))
	}

	for _, rv := range reduces {
		fmt.Fprintf(w, `%[1]s %[2]s(%[3]s a, %[1]s (*f)(%[1]s, %[4]s), %[1]s init) {
	%[1]s acc = init;
	for (int i = 0; i < a.length; i++) {
		acc = f(acc, a.data[i]);
	}
	return acc;
}

`, rv.ctype, rv.fn, n, et)
	}
}

func writeConsoleSection(w *strings.Builder) {
	w.WriteString(`void CONSOLE_print_string(String v) {
	printf("%.*s\n", v.length, v.data);
}

void CONSOLE_print_cstr(const char* v) {
	printf("%s\n", v);
}

void CONSOLE_print_integer(int v) {
	printf("%d\n", v);
}

void CONSOLE_print_long(long long v) {
	printf("%lld\n", v);
}

void CONSOLE_print_float(float v) {
	printf("%g\n", (double)v);
}

void CONSOLE_print_longfloat(double v) {
	printf("%g\n", v);
}

void CONSOLE_print_boolean(bool v) {
	printf("%s\n", v ? "true" : "false");
}

void CONSOLE_print_character(char v) {
	printf("%c\n", v);
}

String CONSOLE_scan(void) {
	char buf[4096];
	if (!fgets(buf, sizeof buf, stdin)) {
		return String_new("", 0);
	}
	int n = (int)strlen(buf);
	while (n > 0 && (buf[n - 1] == '\n' || buf[n - 1] == '\r')) {
		n--;
	}
	return String_new(buf, n);
}

int CONSOLE_scan_integer(void) {
	int v = 0;
	if (scanf("%d", &v) != 1) {
		v = 0;
	}
	return v;
}

float CONSOLE_scan_float(void) {
	float v = 0;
	if (scanf("%f", &v) != 1) {
		v = 0;
	}
	return v;
}

bool CONSOLE_scan_boolean(void) {
	char buf[16] = {0};
	if (scanf("%15s", buf) != 1) {
		return false;
	}
	return strcmp(buf, "true") == 0;
}

void CONSOLE_clear(void) {
	printf("\033[2J\033[H");
}

`)
}

func writeMathSection(w *strings.Builder) {
	w.WriteString(`static const float MATH_PI = 3.14159265358979323846f;
static const float MATH_E = 2.71828182845904523536f;

float MATH_min(float a, float b) {
	return a < b ? a : b;
}

float MATH_max(float a, float b) {
	return a > b ? a : b;
}

float MATH_absolute(float v) {
	return fabsf(v);
}

float MATH_square_root(float v) {
	return sqrtf(v);
}

float MATH_power(float a, float b) {
	return powf(a, b);
}

float MATH_floor(float v) {
	return floorf(v);
}

float MATH_ceil(float v) {
	return ceilf(v);
}

float MATH_round(float v) {
	return roundf(v);
}

float MATH_sine(float v) {
	return sinf(v);
}

float MATH_cosine(float v) {
	return cosf(v);
}

float MATH_tangent(float v) {
	return tanf(v);
}

float MATH_random(void) {
	return (float)rand() / ((float)RAND_MAX + 1.0f);
}

float MATH_clamp(float v, float lo, float hi) {
	return v < lo ? lo : (v > hi ? hi : v);
}

`)
}

func writeStringClassSection(w *strings.Builder, arrayType string) {
	fmt.Fprintf(w, `String STRING_join(%s parts, String sep) {
	String r = String_new("", 0);
	for (int i = 0; i < parts.length; i++) {
		if (i > 0) {
			r = String_concat(r, sep);
		}
		r = String_concat(r, parts.data[i]);
	}
	return r;
}

`, arrayType)
	w.WriteString(`bool STRING_contains(String s, String sub) {
	if (sub.length == 0) {
		return true;
	}
	for (int i = 0; i + sub.length <= s.length; i++) {
		if (memcmp(s.data + i, sub.data, (size_t)sub.length) == 0) {
			return true;
		}
	}
	return false;
}

bool STRING_starts_with(String s, String prefix) {
	return prefix.length <= s.length &&
		memcmp(s.data, prefix.data, (size_t)prefix.length) == 0;
}

bool STRING_ends_with(String s, String suffix) {
	return suffix.length <= s.length &&
		memcmp(s.data + (s.length - suffix.length), suffix.data, (size_t)suffix.length) == 0;
}

int STRING_length(String s) {
	return s.length;
}

`)
}

func writeRandomSection(w *strings.Builder) {
	w.WriteString(`int RANDOM_integer(int lo, int hi) {
	if (hi < lo) {
		int t = lo;
		lo = hi;
		hi = t;
	}
	return lo + rand() % (hi - lo + 1);
}

float RANDOM_float(void) {
	return (float)rand() / ((float)RAND_MAX + 1.0f);
}

bool RANDOM_boolean(void) {
	return rand() % 2 == 0;
}

char RANDOM_character(void) {
	return (char)('a' + rand() % 26);
}

void RANDOM_seed(int seed) {
	srand((unsigned)seed);
}

`)
}

func writeFileSection(w *strings.Builder) {
	w.WriteString(`String FILECLS_read(String path) {
	FILE* f = fopen(path.data, "rb");
	if (!f) {
		return String_new("", 0);
	}
	fseek(f, 0, SEEK_END);
	long n = ftell(f);
	fseek(f, 0, SEEK_SET);
	char* buf = malloc((size_t)n + 1);
	size_t got = fread(buf, 1, (size_t)n, f);
	fclose(f);
	String s = String_new(buf, (int)got);
	free(buf);
	return s;
}

bool FILECLS_write(String path, String content) {
	FILE* f = fopen(path.data, "wb");
	if (!f) {
		return false;
	}
	size_t wrote = fwrite(content.data, 1, (size_t)content.length, f);
	fclose(f);
	return wrote == (size_t)content.length;
}

bool FILECLS_append(String path, String content) {
	FILE* f = fopen(path.data, "ab");
	if (!f) {
		return false;
	}
	size_t wrote = fwrite(content.data, 1, (size_t)content.length, f);
	fclose(f);
	return wrote == (size_t)content.length;
}

bool FILECLS_exists(String path) {
	FILE* f = fopen(path.data, "rb");
	if (!f) {
		return false;
	}
	fclose(f);
	return true;
}

bool FILECLS_delete(String path) {
	return remove(path.data) == 0;
}

`)
}

func writeDatetimeSection(w *strings.Builder) {
	w.WriteString(`static struct tm* DATETIME_local(void) {
	time_t t = time(NULL);
	return localtime(&t);
}

String DATETIME_now(void) {
	char buf[32];
	strftime(buf, sizeof buf, "%Y-%m-%d %H:%M:%S", DATETIME_local());
	return String_from_cstr(buf);
}

int DATETIME_year(void) {
	return DATETIME_local()->tm_year + 1900;
}

int DATETIME_month(void) {
	return DATETIME_local()->tm_mon + 1;
}

int DATETIME_day(void) {
	return DATETIME_local()->tm_mday;
}

int DATETIME_hour(void) {
	return DATETIME_local()->tm_hour;
}

int DATETIME_minute(void) {
	return DATETIME_local()->tm_min;
}

int DATETIME_second(void) {
	return DATETIME_local()->tm_sec;
}

`)
}
